package auth

// Identity is the profile delivered by the federated sign-in provider.
// Verifying the provider round-trip happens upstream; an Identity reaching
// this service is taken as authenticated.
type Identity struct {
	UID      string `json:"uid"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	PhotoURL string `json:"photo_url"`
}
