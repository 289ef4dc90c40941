package components

import "strconv"

// StatEvent names the SSE event carrying a stat's value.
func StatEvent(id string) string {
	return "stat-" + id
}

func pad2(n int) string {
	if n < 10 && n >= 0 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func fieldID(name string) string {
	return "field-" + name
}
