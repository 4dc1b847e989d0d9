package router

import "fmt"

func path(format string, id float64) string {
	return fmt.Sprintf(format, uint64(id))
}
