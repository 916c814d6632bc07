package model

// MaxTweetID returns the larger of two decimal tweet ids. A longer numeral is
// always larger; equal lengths compare lexicographically. Empty ids lose to
// anything, and two empty ids yield "".
func MaxTweetID(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	case len(a) != len(b):
		if len(a) > len(b) {
			return a
		}
		return b
	case a < b:
		return b
	default:
		return a
	}
}
