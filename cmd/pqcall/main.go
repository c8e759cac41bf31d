// pqcall: send one request to a pqexec executor and print the result as hex.
//
//	pqcall [flags] ping
//	pqcall [flags] keypair
//	pqcall [flags] encap --pub HEX
//	pqcall [flags] decap --priv HEX --ct HEX
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"dev.c0redev.pqmsg/internal/client"
	"dev.c0redev.pqmsg/internal/proto"
)

type options struct {
	network string
	addr    string
	alg     string
	pub     string
	priv    string
	ct      string
	timeout time.Duration
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "pqcall: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var o options
	flags := pflag.NewFlagSet("pqcall", pflag.ContinueOnError)
	flags.StringVarP(&o.network, "network", "n", "unix", "unix, tcp or quic")
	flags.StringVarP(&o.addr, "addr", "a", "pqexec.sock", "executor address")
	flags.StringVar(&o.alg, "alg", proto.Kyber768.String(), "algorithm name, e.g. KYBER_1024__ECDHp521")
	flags.StringVar(&o.pub, "pub", "", "public key (hex), for encap")
	flags.StringVar(&o.priv, "priv", "", "private key (hex), for decap")
	flags.StringVar(&o.ct, "ct", "", "ciphertext (hex), for decap")
	flags.DurationVar(&o.timeout, "timeout", 10*time.Second, "request timeout")
	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if flags.NArg() != 1 {
		return errors.New("usage: pqcall [flags] ping|keypair|encap|decap")
	}
	alg, err := proto.ParseAlgorithm(o.alg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()
	c, err := client.Dial(ctx, o.network, o.addr)
	if err != nil {
		return err
	}
	defer c.Close()

	switch cmd := flags.Arg(0); cmd {
	case "ping":
		if err := c.Ping(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "ok")
	case "keypair":
		pub, priv, err := c.GenerateKeyPair(ctx, alg)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "pub  %x\npriv %x\n", pub, priv)
	case "encap":
		pub, err := decodeHex("pub", o.pub)
		if err != nil {
			return err
		}
		ct, ss, err := c.Encapsulate(ctx, alg, pub)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "ct %x\nss %x\n", ct, ss)
	case "decap":
		priv, err := decodeHex("priv", o.priv)
		if err != nil {
			return err
		}
		ct, err := decodeHex("ct", o.ct)
		if err != nil {
			return err
		}
		ss, err := c.Decapsulate(ctx, alg, priv, ct)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "ss %x\n", ss)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func decodeHex(flag, s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("--%s is required", flag)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	return b, nil
}
