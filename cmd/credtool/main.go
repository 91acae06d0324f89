// Command credtool hashes a field-worker password for provisioning an
// app_credentials row. The server only ever verifies hashes; this tool is
// the operator-side producer.
//
//	credtool -p <project-id> -u <username> [-c <bcrypt-cost>]
//
// The password is read from the terminal with echo disabled and is never
// written anywhere in plain text.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/surveyfield/fieldsync/internal/common"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("credtool", flag.ContinueOnError)
	projectID := fs.String("p", "", "project id the credential belongs to")
	username := fs.String("u", "", "login name, unique within the project")
	description := fs.String("d", "", "free-form description")
	cost := fs.Int("c", bcrypt.DefaultCost, "bcrypt cost")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *projectID == "" || *username == "" {
		return errors.New("both -p and -u are required")
	}

	fmt.Fprintln(w, "Enter password")
	password, err := readPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	fmt.Fprintln(w, "Repeat password")
	confirm, err := readPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(password, confirm) {
		return errors.New("passwords do not match")
	}
	if len(password) == 0 {
		return errors.New("password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword(password, *cost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	fmt.Fprintf(w, "password_hash: %s\n\n", hash)
	fmt.Fprintf(w, "INSERT INTO app_credentials (id, project_id, username, password_hash, description, is_active)\n")
	fmt.Fprintf(w, "VALUES ('%s', '%s', '%s', '%s', '%s', TRUE);\n",
		uuid.NewString(), *projectID, *username, hash, *description)

	return nil
}
