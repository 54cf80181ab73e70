package domain

// UserContext carries the per-request user data the pipeline needs: the
// entitlement token and the membership attributes that shape access messages.
type UserContext struct {
	Token       string
	Tier        string
	HasDiscount bool
	Language    Language
}
