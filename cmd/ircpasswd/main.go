// Command ircpasswd hashes an operator password for use in an ircd scfg
// config file's "oper" block, mirroring soju's cmd/sojuctl pattern of
// prompting at a terminal rather than accepting a password on argv.
package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
	fmt.Fprint(os.Stderr, "Password: ")
	pw1, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ircpasswd:", err)
		os.Exit(1)
	}

	fmt.Fprint(os.Stderr, "Confirm: ")
	pw2, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ircpasswd:", err)
		os.Exit(1)
	}

	if string(pw1) != string(pw2) {
		fmt.Fprintln(os.Stderr, "ircpasswd: passwords did not match")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword(pw1, bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ircpasswd:", err)
		os.Exit(1)
	}

	fmt.Println(string(hash))
}
