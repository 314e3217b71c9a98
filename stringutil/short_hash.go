package stringutil

const shortHashLength = 16

// ShortHash keeps the head and tail of a long hex hash for log lines.
func ShortHash(hash string) string {
	if len(hash) <= shortHashLength {
		return hash
	}
	half := shortHashLength / 2
	return hash[:half] + ".." + hash[len(hash)-half:]
}
