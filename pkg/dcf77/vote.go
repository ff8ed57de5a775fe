package dcf77

// Vote returns the index of the largest of three counts together with its value.
// On a tie the lowest index wins.
func Vote(a, b, c int) (index, value int) {
	index, value = 0, a
	if b > value {
		index, value = 1, b
	}
	if c > value {
		index, value = 2, c
	}
	return index, value
}
