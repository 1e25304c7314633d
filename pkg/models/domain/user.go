package domain

// UserSpec is the desired state for one directory user.
type UserSpec struct {
	UserPrincipalName string
	DisplayName       string
	MailNickname      string
}

// Descriptor maps a user spec onto the generic resource shape so it can
// flow through the reconcile engine like any other resource.
func (u UserSpec) Descriptor() ResourceDescriptor {
	return ResourceDescriptor{
		ID:   u.UserPrincipalName,
		Name: u.UserPrincipalName,
		Type: ResourceTypeUser,
	}
}
