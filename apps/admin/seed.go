package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/pathways/core/namespace"
	appfs "github.com/trezcool/pathways/fs"
)

var (
	seedFS = appfs.FS // mockable

	errInvalidJSON = errors.New("file is not a JSON document")
)

func (cli *commandLine) seed(force bool) error {
	written, err := cli.reg.ApplySeeds(context.Background(), seedFS, force)
	for _, key := range written {
		fmt.Fprintf(cli.out, "seeded %s\n", key)
	}
	if err != nil {
		return err
	}
	if len(written) == 0 {
		fmt.Fprintln(cli.out, "nothing to seed")
	}
	return nil
}

func (cli *commandLine) keys() error {
	keys, err := cli.reg.Adapter.Keys(context.Background())
	if err != nil {
		return err
	}
	for _, key := range keys {
		fmt.Fprintln(cli.out, key)
	}
	return nil
}

func (cli *commandLine) get(key string) error {
	data, found, err := cli.reg.Adapter.Raw(context.Background(), key)
	if err != nil {
		return err
	}
	if !found {
		return errors.Errorf("%s: no such key", key)
	}
	fmt.Fprintln(cli.out, string(data))
	return nil
}

// set replaces the document under key. Documents of known collections must be JSON arrays.
func (cli *commandLine) set(key, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading document")
	}
	if !json.Valid(data) {
		return errInvalidJSON
	}
	if isCollection(key) {
		var items []json.RawMessage
		if err = json.Unmarshal(data, &items); err != nil {
			return errors.Wrapf(err, "%s holds a list", key)
		}
	}
	if err = cli.reg.Adapter.SetRaw(context.Background(), key, data); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "saved %s\n", key)
	return nil
}

func isCollection(key string) bool {
	for _, k := range namespace.AllKeys {
		if k == key {
			return true
		}
	}
	return false
}
