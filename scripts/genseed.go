// One-off: go run scripts/genseed.go [password]
// Prints a bcrypt hash and a fresh slug, handy for seeding a dev user.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	password := "admin"
	if len(os.Args) > 1 {
		password = os.Args[1]
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		panic(err)
	}
	fmt.Printf("password_hash: %s\n", h)
	fmt.Printf("public_slug:   %s\n", strings.ToLower(ulid.Make().String()))
}
