package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) purgeSessions() error {
	n, err := cli.sessions.Purge(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "purged %d expired session(s)\n", n)
	return nil
}
