package main

import (
	"bytes"
	"fmt"
	"strings"
	"syscall"

	"golang.org/x/term"

	"interviewsim/pkg/config"
)

// secretNames are the API keys the setup flow offers to store.
var secretNames = []string{
	config.EnvGoogleKey,
	config.EnvAnthropicKey,
	config.EnvOpenAIKey,
	config.EnvTavilyKey,
}

// runSecretsSetup interactively collects API keys and stores them encrypted
// under the data directory.
func runSecretsSetup(cfg *config.Config) error {
	fmt.Println("Interview simulator secrets setup")
	fmt.Println("Keys are stored encrypted; leave a prompt empty to skip it.")
	fmt.Println()

	stored := 0
	for _, name := range secretNames {
		fmt.Printf("%s: ", name)
		value, err := term.ReadPassword(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		if len(value) == 0 {
			continue
		}
		config.SetSecret(name, string(value))
		stored++
	}

	if stored == 0 {
		fmt.Println("Nothing to store.")
		return nil
	}

	password, err := promptForPassword()
	if err != nil {
		return err
	}

	if err := config.SaveSecrets(cfg.DataDir, password); err != nil {
		return err
	}
	fmt.Printf("Stored %d secret(s) under %s.\n", stored, cfg.DataDir)
	return nil
}

// unlockSecretsIfPresent decrypts the secrets file when one exists. A
// wrong password is fatal; no secrets file means env vars are used.
func unlockSecretsIfPresent(cfg *config.Config) error {
	if !config.SecretsFileExists(cfg.DataDir) {
		return nil
	}

	fmt.Print("Secrets password: ")
	password, err := term.ReadPassword(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	if err := config.LoadSecrets(cfg.DataDir, string(password)); err != nil {
		return fmt.Errorf("failed to unlock secrets: %w", err)
	}
	return nil
}

func promptForPassword() (string, error) {
	const maxAttempts = 3
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		fmt.Print("Choose an encryption password: ")
		first, err := term.ReadPassword(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}

		fmt.Print("Confirm password: ")
		second, err := term.ReadPassword(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}

		if !bytes.Equal(first, second) {
			if attempt < maxAttempts {
				fmt.Println("Passwords do not match. Please try again.")
				continue
			}
			return "", fmt.Errorf("passwords do not match after %d attempts", maxAttempts)
		}

		password := strings.TrimSpace(string(first))
		for i := range first {
			first[i] = 0
		}
		for i := range second {
			second[i] = 0
		}
		if password == "" {
			return "", fmt.Errorf("password cannot be empty")
		}
		return password, nil
	}
	return "", fmt.Errorf("password entry failed")
}
