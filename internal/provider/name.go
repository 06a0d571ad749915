package provider

import "strconv"

// NotFound is the sentinel ChildIndexForName returns for names that are not
// of the "[<decimal>]" form. Hosts probe many name shapes speculatively, so
// a miss must stay cheap and must not be an error.
const NotFound = -1

// ChildIndexForName parses a synthesized child name back to its index.
// Accepted form is exactly "[<decimal digits>]"; everything else, including
// signs, spaces and empty brackets, resolves to NotFound.
func ChildIndexForName(name string) int {
	if len(name) < 3 || name[0] != '[' || name[len(name)-1] != ']' {
		return NotFound
	}
	digits := name[1 : len(name)-1]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return NotFound
		}
	}
	idx, err := strconv.Atoi(digits)
	if err != nil {
		// All-digit but too large to represent.
		return NotFound
	}
	return idx
}

func childName(index int) string {
	return "[" + strconv.Itoa(index) + "]"
}
