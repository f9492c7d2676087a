package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/germanamz/nmapsum/pkg/credentials"
)

func runKey(c commonFlags) error {
	d, err := buildDeps(c, logStderr)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()

	if err := d.dir.EnsureStructure(); err != nil {
		return err
	}

	current, err := d.creds.Get()
	if err != nil {
		return err
	}

	if current != "" {
		overwrite := false
		if err := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().Title("An API key is already stored. Replace it?").Value(&overwrite),
		)).Run(); err != nil {
			return abortedIsNil(err)
		}
		if !overwrite {
			return nil
		}
	}

	var apiKey string
	if err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Gemini API key").
			Description("Saved to " + d.dir.CredentialsPath()).
			EchoMode(huh.EchoModePassword).
			Value(&apiKey).
			Validate(validateKey),
	)).Run(); err != nil {
		return abortedIsNil(err)
	}

	if err := storeKey(d.creds, apiKey); err != nil {
		return err
	}

	d.log.Info("api key stored", "path", d.dir.CredentialsPath())
	fmt.Printf("Saved API key to %s\n", d.dir.CredentialsPath())

	return nil
}

func validateKey(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("key cannot be empty")
	}
	if strings.ContainsAny(s, " \t\r\n") {
		return errors.New("key cannot contain whitespace")
	}
	return nil
}

func storeKey(p credentials.Provider, apiKey string) error {
	if err := validateKey(apiKey); err != nil {
		return err
	}
	return p.Set(apiKey)
}

func abortedIsNil(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return nil
	}
	return err
}
