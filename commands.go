// Copyright 2023 Tobias Klausmann
// Licensed under the GPLv3, see COPYING for details
//

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/klausman/pngme/png"
	"github.com/klausman/pngme/seal"
)

var errEmptyKey = errors.New("empty passphrase")

// keyFlags select the passphrase for encrypting or decrypting messages.
type keyFlags struct {
	key     string
	keyFile string
	prompt  bool

	fs *pflag.FlagSet
}

func (k *keyFlags) register(fs *pflag.FlagSet) {
	k.fs = fs
	fs.StringVarP(&k.key, "key", "k", "", "Passphrase to encrypt/decrypt the message with")
	fs.StringVar(&k.keyFile, "key-file", "", "Read the passphrase from this file")
	fs.BoolVarP(&k.prompt, "prompt", "p", false, "Prompt for the passphrase")
}

// transform returns the transform and key to apply to messages. Without any
// key, messages are stored as they are. A key asked for on the command line
// must not be empty.
func (a *app) transform(k keyFlags) (seal.Transform, string, error) {
	var key string
	switch {
	case k.fs.Changed("key"):
		if k.key == "" {
			return nil, "", errEmptyKey
		}
		key = k.key
	case k.keyFile != "":
		var err error
		if key, err = readKeyFile(k.keyFile); err != nil {
			return nil, "", err
		}
	case k.prompt:
		var err error
		if key, err = a.readPassphrase(); err != nil {
			return nil, "", err
		}
		if key == "" {
			return nil, "", errEmptyKey
		}
	case a.cfg.KeyFile != "":
		var err error
		if key, err = readKeyFile(a.cfg.KeyFile); err != nil {
			return nil, "", err
		}
	}
	if key == "" {
		return seal.Plain{}, "", nil
	}
	return a.sealer, key, nil
}

// chunkTypeArg returns the chunk type from the positional arguments, or the
// configured default if there is no argument for it.
func (a *app) chunkTypeArg(args []string, i int) (png.ChunkType, error) {
	s := a.cfg.ChunkType
	if i < len(args) {
		s = args[i]
	}
	if s == "" {
		return png.ChunkType{}, fmt.Errorf("no chunk type given and none configured")
	}
	return png.ParseChunkType(s)
}

func (a *app) encode(args []string) error {
	var (
		common  commonFlags
		keys    keyFlags
		output  string
		display bool
	)
	fs := a.newFlagSet("encode", "<file> [chunk-type] <message>")
	common.register(fs)
	keys.register(fs)
	fs.StringVarP(&output, "output", "o", "", "Write the result here instead of back to <file>")
	fs.BoolVar(&display, "print", false, "Print the resulting chunks instead of saving")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := a.setup(common, "encode"); err != nil {
		return err
	}

	args = fs.Args()
	var typeArgs []string
	switch len(args) {
	case 2:
	case 3:
		typeArgs = args[1:2]
	default:
		fs.Usage()
		return errUsage
	}
	filename, message := args[0], args[len(args)-1]

	typ, err := a.chunkTypeArg(typeArgs, 0)
	if err != nil {
		return err
	}
	if !typ.IsValid() {
		return fmt.Errorf("chunk type %s is not valid: its third letter must be uppercase", typ)
	}

	p, err := loadFile(filename)
	if err != nil {
		return err
	}
	tr, key, err := a.transform(keys)
	if err != nil {
		return err
	}
	text, err := tr.Encrypt(key, message)
	if err != nil {
		return err
	}
	p.AppendChunk(png.NewChunk(typ, []byte(text)))
	a.logger.Debug("appended chunk", "file", filename, "type", typ.String(),
		"length", len(text), "encrypted", key != "")

	if display {
		fmt.Fprint(a.stdout, p)
		return nil
	}
	if output == "" {
		output = filename
	}
	if err := saveFile(output, filename, p); err != nil {
		return err
	}
	a.logger.Info("message hidden", "file", output, "type", typ.String())
	return nil
}

func (a *app) decode(args []string) error {
	var (
		common commonFlags
		keys   keyFlags
	)
	fs := a.newFlagSet("decode", "<file> [chunk-type]")
	common.register(fs)
	keys.register(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := a.setup(common, "decode"); err != nil {
		return err
	}

	args = fs.Args()
	if len(args) < 1 || len(args) > 2 {
		fs.Usage()
		return errUsage
	}
	typ, err := a.chunkTypeArg(args, 1)
	if err != nil {
		return err
	}
	p, err := loadFile(args[0])
	if err != nil {
		return err
	}
	c, ok := p.ChunkByType(typ.String())
	if !ok {
		return fmt.Errorf("%s: %w: no %s chunk", args[0], png.ErrChunkNotFound, typ)
	}
	text, err := c.Text()
	if err != nil {
		return err
	}
	tr, key, err := a.transform(keys)
	if err != nil {
		return err
	}
	message, err := tr.Decrypt(key, text)
	if err != nil {
		return err
	}
	a.logger.Debug("found chunk", "file", args[0], "type", typ.String(), "length", c.Length())
	fmt.Fprintf(a.stdout, "The secret message is: %s\n", message)
	return nil
}

func (a *app) remove(args []string) error {
	var (
		common commonFlags
		output string
		force  bool
	)
	fs := a.newFlagSet("remove", "<file> [chunk-type]")
	common.register(fs)
	fs.StringVarP(&output, "output", "o", "", "Write the result here instead of back to <file>")
	fs.BoolVarP(&force, "force", "f", false, "Allow removing critical chunks")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := a.setup(common, "remove"); err != nil {
		return err
	}

	args = fs.Args()
	if len(args) < 1 || len(args) > 2 {
		fs.Usage()
		return errUsage
	}
	filename := args[0]
	typ, err := a.chunkTypeArg(args, 1)
	if err != nil {
		return err
	}
	if typ.IsCritical() && !force {
		return fmt.Errorf("refusing to remove critical chunk %s without --force", typ)
	}

	p, err := loadFile(filename)
	if err != nil {
		return err
	}
	c, err := p.RemoveChunk(typ.String())
	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	if output == "" {
		output = filename
	}
	if err := saveFile(output, filename, p); err != nil {
		return err
	}
	a.logger.Info("chunk removed", "file", output, "type", typ.String(), "length", c.Length())
	return nil
}

func (a *app) print(args []string) error {
	var common commonFlags
	fs := a.newFlagSet("print", "<file>")
	common.register(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := a.setup(common, "print"); err != nil {
		return err
	}

	args = fs.Args()
	if len(args) != 1 {
		fs.Usage()
		return errUsage
	}
	p, err := loadFile(args[0])
	if err != nil {
		return err
	}
	if h, err := p.Header(); err == nil {
		fmt.Fprintf(a.stdout, "Image: %s\n", h)
	} else {
		a.logger.Warn("no usable IHDR", "file", args[0], "error", err)
	}
	fmt.Fprint(a.stdout, p)
	return nil
}

func loadFile(filename string) (*png.PNG, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	p, err := png.Load(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return p, nil
}

// saveFile writes p to filename via a temporary file in the same directory,
// so that filename is either fully replaced or left alone. The mode is taken
// from modeFrom if it exists.
func saveFile(filename, modeFrom string, p *png.PNG) error {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(modeFrom); err == nil {
		mode = fi.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(filename), ".pngme-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := p.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filename)
}
