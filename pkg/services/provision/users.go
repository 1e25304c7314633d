package provision

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/de-tools/ops-atlas/pkg/models/domain"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	graphmodels "github.com/microsoftgraph/msgraph-sdk-go/models"
	graphusers "github.com/microsoftgraph/msgraph-sdk-go/users"
)

// Directory is the slice of the identity provider used for user
// provisioning.
type Directory interface {
	UserExists(ctx context.Context, upn string) (bool, error)
	CreateUser(ctx context.Context, spec domain.UserSpec) error
}

// GraphDirectory implements Directory against Microsoft Graph.
type GraphDirectory struct {
	client *msgraphsdk.GraphServiceClient
}

func NewGraphDirectory(client *msgraphsdk.GraphServiceClient) *GraphDirectory {
	return &GraphDirectory{client: client}
}

// UserExists checks for a user by principal name.
func (d *GraphDirectory) UserExists(ctx context.Context, upn string) (bool, error) {
	filter := fmt.Sprintf("userPrincipalName eq '%s'", strings.ReplaceAll(upn, "'", "''"))
	result, err := d.client.Users().Get(ctx, &graphusers.UsersRequestBuilderGetRequestConfiguration{
		QueryParameters: &graphusers.UsersRequestBuilderGetQueryParameters{Filter: &filter},
	})
	if err != nil {
		return false, fmt.Errorf("failed to look up user %s: %w", upn, err)
	}
	return len(result.GetValue()) > 0, nil
}

// CreateUser provisions a user with a generated initial password that
// must be changed at first sign-in.
func (d *GraphDirectory) CreateUser(ctx context.Context, spec domain.UserSpec) error {
	password, err := initialPassword()
	if err != nil {
		return err
	}

	user := graphmodels.NewUser()
	user.SetAccountEnabled(to.Ptr(true))
	user.SetUserPrincipalName(to.Ptr(spec.UserPrincipalName))
	user.SetDisplayName(to.Ptr(spec.DisplayName))
	user.SetMailNickname(to.Ptr(spec.MailNickname))

	profile := graphmodels.NewPasswordProfile()
	profile.SetForceChangePasswordNextSignIn(to.Ptr(true))
	profile.SetPassword(to.Ptr(password))
	user.SetPasswordProfile(profile)

	if _, err := d.client.Users().Post(ctx, user, nil); err != nil {
		return fmt.Errorf("failed to create user %s: %w", spec.UserPrincipalName, err)
	}
	return nil
}

func initialPassword() (string, error) {
	raw := make([]byte, 18)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate initial password: %w", err)
	}
	return "Aa1!" + base64.RawURLEncoding.EncodeToString(raw), nil
}

// UserReconciler provisions directory users idempotently through the
// reconcile engine.
type UserReconciler struct {
	directory Directory
	order     []string
	specs     map[string]domain.UserSpec
	dryRun    bool
}

// NewUserReconciler indexes the specs by principal name, keeping the
// input order for the target list. A duplicate principal name is an
// error rather than a silent last-row-wins merge.
func NewUserReconciler(directory Directory, specs []domain.UserSpec, dryRun bool) (*UserReconciler, error) {
	indexed := make(map[string]domain.UserSpec, len(specs))
	order := make([]string, 0, len(specs))
	for _, spec := range specs {
		if spec.UserPrincipalName == "" || spec.DisplayName == "" || spec.MailNickname == "" {
			return nil, fmt.Errorf("incomplete user spec for %q: all of upn, display name and mail nickname are required", spec.UserPrincipalName)
		}
		if _, seen := indexed[spec.UserPrincipalName]; seen {
			return nil, fmt.Errorf("duplicate user spec for %q", spec.UserPrincipalName)
		}
		order = append(order, spec.UserPrincipalName)
		indexed[spec.UserPrincipalName] = spec
	}
	return &UserReconciler{directory: directory, order: order, specs: indexed, dryRun: dryRun}, nil
}

func (r *UserReconciler) Operation() string { return "user" }

// Targets returns one descriptor per user spec, for a static enumerator.
func (r *UserReconciler) Targets() []domain.ResourceDescriptor {
	out := make([]domain.ResourceDescriptor, 0, len(r.order))
	for _, upn := range r.order {
		out = append(out, r.specs[upn].Descriptor())
	}
	return out
}

func (r *UserReconciler) Reconcile(ctx context.Context, target domain.ResourceDescriptor) domain.ActionOutcome {
	spec, ok := r.specs[target.Name]
	if !ok {
		return domain.ActionOutcome{
			Target: target,
			Status: domain.StatusFailed,
			Detail: fmt.Sprintf("no spec for user %s", target.Name),
		}
	}

	exists, err := r.directory.UserExists(ctx, spec.UserPrincipalName)
	if err != nil {
		return domain.ActionOutcome{
			Target: target,
			Status: domain.StatusFailed,
			Detail: err.Error(),
		}
	}
	if exists {
		return domain.ActionOutcome{
			Target: target,
			Status: domain.StatusSkipped,
			Detail: fmt.Sprintf("user %s already exists", spec.UserPrincipalName),
		}
	}

	if r.dryRun {
		return domain.ActionOutcome{
			Target: target,
			Status: domain.StatusSkipped,
			Detail: fmt.Sprintf("would create user %s", spec.UserPrincipalName),
		}
	}

	if err := r.directory.CreateUser(ctx, spec); err != nil {
		return domain.ActionOutcome{
			Target: target,
			Status: domain.StatusFailed,
			Detail: err.Error(),
		}
	}

	return domain.ActionOutcome{
		Target: target,
		Status: domain.StatusCreated,
		Detail: fmt.Sprintf("created user %s", spec.UserPrincipalName),
	}
}

// LoadUserSpecs reads user specs from a CSV file with the columns
// upn,displayName,mailNickname. A header row is optional.
func LoadUserSpecs(path string) ([]domain.UserSpec, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open user file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 3

	var specs []domain.UserSpec
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse user file: %w", err)
		}
		if strings.EqualFold(record[0], "upn") {
			continue
		}
		specs = append(specs, domain.UserSpec{
			UserPrincipalName: strings.TrimSpace(record[0]),
			DisplayName:       strings.TrimSpace(record[1]),
			MailNickname:      strings.TrimSpace(record[2]),
		})
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("user file %s contains no users", path)
	}
	return specs, nil
}
