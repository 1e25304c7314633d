package commands

import (
	opserrors "github.com/de-tools/ops-atlas/pkg/errors"
	"github.com/de-tools/ops-atlas/pkg/services/notify"
	"github.com/spf13/cobra"
)

type NotifyCmd struct {
	to      []string
	subject string
	body    string
}

func NewNotifyCmd() *cobra.Command {
	nc := &NotifyCmd{}
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send a one-off email through the configured SMTP host",
		RunE:  nc.run,
	}

	cmd.Flags().StringSliceVar(&nc.to, "to", nil, "Recipient addresses")
	cmd.Flags().StringVar(&nc.subject, "subject", "", "Message subject")
	cmd.Flags().StringVar(&nc.body, "body", "", "Message body")

	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

func (nc *NotifyCmd) run(cmd *cobra.Command, _ []string) error {
	settings, err := LoadToolSettings()
	if err != nil {
		return err
	}
	mailer, err := settings.Mailer()
	if err != nil {
		return opserrors.NewSetupError("smtp", err)
	}

	return mailer.Send(cmd.Context(), notify.Message{
		To:      nc.to,
		Subject: nc.subject,
		Body:    nc.body,
	})
}
