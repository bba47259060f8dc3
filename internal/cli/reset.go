package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/terraincognita07/careline/internal/models"
	"github.com/terraincognita07/careline/internal/security"
	"github.com/terraincognita07/careline/internal/services"
)

const temporaryPasswordLength = 12

// PasswordResetter is the part of the auth service the command needs.
type PasswordResetter interface {
	ResetPassword(phone string, password string) (models.User, error)
}

type ResetPasswordOptions struct {
	Phone string
	// Prompt asks for the new password on stdin instead of generating one.
	Prompt bool
	Stdin  *os.File
	Out    io.Writer
}

func RunResetPasswordCommand(resetter PasswordResetter, options ResetPasswordOptions) error {
	phone := strings.TrimSpace(options.Phone)
	if phone == "" {
		return errors.New("phone is required")
	}
	out := options.Out
	if out == nil {
		out = os.Stdout
	}

	password, generated, err := resolveNewPassword(options, out)
	if err != nil {
		return err
	}

	user, err := resetter.ResetPassword(phone, password)
	if errors.Is(err, services.ErrNotFound) {
		return fmt.Errorf("user %s not found", phone)
	}
	if errors.Is(err, services.ErrWeakPassword) {
		return fmt.Errorf("password must be at least %d characters", services.MinPasswordLength)
	}
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	fmt.Fprintf(out, "✅ Password reset for %s (user #%d)\n", phone, user.ID)
	if generated {
		fmt.Fprintf(out, "Temporary password: %s\n", password)
	}
	return nil
}

func resolveNewPassword(options ResetPasswordOptions, out io.Writer) (string, bool, error) {
	if !options.Prompt {
		password, err := security.TemporaryPassword(temporaryPasswordLength)
		if err != nil {
			return "", false, fmt.Errorf("generate temporary password: %w", err)
		}
		return password, true, nil
	}

	stdin := options.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	passwords := newPasswordReader(stdin)
	fmt.Fprint(out, "New password: ")
	first, err := passwords.Read()
	fmt.Fprintln(out)
	if err != nil {
		return "", false, fmt.Errorf("read password: %w", err)
	}
	fmt.Fprint(out, "Repeat password: ")
	second, err := passwords.Read()
	fmt.Fprintln(out)
	if err != nil {
		return "", false, fmt.Errorf("read password: %w", err)
	}
	if first != second {
		return "", false, errors.New("passwords do not match")
	}
	return first, false, nil
}
