package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMTPMailer(t *testing.T) {
	tests := []struct {
		name    string
		opts    SMTPOptions
		wantErr bool
	}{
		{
			name: "valid anonymous",
			opts: SMTPOptions{Host: "smtp.example.com", Port: 587, From: "ops@example.com"},
		},
		{
			name: "valid authenticated",
			opts: SMTPOptions{
				Host:     "smtp.example.com",
				Port:     465,
				Username: "ops",
				Password: "secret",
				From:     "ops@example.com",
			},
		},
		{
			name:    "missing host",
			opts:    SMTPOptions{Port: 587, From: "ops@example.com"},
			wantErr: true,
		},
		{
			name:    "malformed sender",
			opts:    SMTPOptions{Host: "smtp.example.com", Port: 587, From: "not-an-address"},
			wantErr: true,
		},
		{
			name:    "port out of range",
			opts:    SMTPOptions{Host: "smtp.example.com", Port: 70000, From: "ops@example.com"},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mailer, err := NewSMTPMailer(tc.opts)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.opts.From, mailer.from)
		})
	}
}
