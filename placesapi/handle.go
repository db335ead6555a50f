package placesapi

import "regexp"

var handleRe = regexp.MustCompile(`^SG_[A-Za-z0-9]{22}(?:_-?[0-9]{1,3}(?:\.[0-9]+)?_-?[0-9]{1,3}(?:\.[0-9]+)?)?(?:@[0-9]+)?$`)

// IsValidHandle reports whether s looks like a handle issued by the service,
// e.g. SG_4H2GqJDZrc0ZAjKGR8qM4D_37.771007_-122.412694@1291736505.
func IsValidHandle(s string) bool {
	return handleRe.MatchString(s)
}
