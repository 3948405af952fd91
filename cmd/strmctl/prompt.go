package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

var errNoInput = errors.New("no input on stdin")

// ask affiche la question et lit une ligne sur stdin.
func (c *cli) ask(question string) (string, error) {
	fmt.Fprint(c.out, question)
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", errNoInput
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// confirm attend "y" ou "yes"; toute autre réponse vaut refus.
func (c *cli) confirm(question string) (bool, error) {
	answer, err := c.ask(question + " [y/N] ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "o", "oui":
		return true, nil
	default:
		return false, nil
	}
}

var errCancelled = errors.New("cancelled")

// cancelled renvoie l'erreur de lecture s'il y en a une, sinon errCancelled.
func cancelled(err error) error {
	if err != nil {
		return err
	}
	return errCancelled
}
