package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Dephilia/rpoaurk/internal/ports"
)

func promptVerifier(in io.Reader, out io.Writer) ports.VerifierSource {
	reader := bufio.NewReader(in)

	return ports.VerifierFunc(func(_ context.Context, authorizationURL string) (string, error) {
		if _, err := fmt.Fprintf(out, "Please access the auth url: %s\n", authorizationURL); err != nil {
			return "", err
		}
		if _, err := fmt.Fprint(out, "Input verifier: "); err != nil {
			return "", err
		}

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return "", fmt.Errorf("read verifier: %w", err)
		}

		return strings.TrimSpace(line), nil
	})
}
