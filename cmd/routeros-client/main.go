// Command routeros-client is a thin CLI front-end over package client and
// package ops, mirroring the two original_source binaries (mk-client,
// client) it was distilled from: identify, active-users and a generic
// custom command runnable as one-off / array-list / listen.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"

	"github.com/oakwood-net/routeros-client/client"
	"github.com/oakwood-net/routeros-client/ops"
	"github.com/oakwood-net/routeros-client/proto"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "routeros-client:", err)
		os.Exit(1)
	}
}

// globalFlags are the three flags every subcommand accepts, per spec.md §6
// "global --address host:port, --login, --password".
type globalFlags struct {
	address  string
	login    string
	password string
}

func (g *globalFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&g.address, "address", "", "RouterOS API address, host:port")
	fs.StringVar(&g.login, "login", "", "login name")
	fs.StringVar(&g.password, "password", "", "login password")
}

func run(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: routeros-client identify|active-users|custom [--address host:port --login NAME --password PASS] ...")
	}

	switch sub, rest := args[0], args[1:]; sub {
	case "identify":
		return runIdentify(rest)
	case "active-users":
		return runActiveUsers(rest)
	case "custom":
		return runCustom(rest)
	default:
		return fmt.Errorf("unknown subcommand %q", sub)
	}
}

func dialAndLogin(ctx context.Context, g globalFlags) (*client.Client, error) {
	if g.address == "" {
		return nil, errors.New("--address is required")
	}
	c, err := client.Dial(ctx, g.address, client.DefaultConfig)
	if err != nil {
		return nil, err
	}
	if err := c.Login(ctx, g.login, g.password); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

type identity struct {
	Name string `ros:"name"`
}

func runIdentify(args []string) error {
	fs := flag.NewFlagSet("identify", flag.ExitOnError)
	var g globalFlags
	g.register(fs)
	full := fs.Bool("full", false, "show the router's system resources as well")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	c, err := dialAndLogin(ctx, g)
	if err != nil {
		return err
	}
	defer c.Close()

	name, err := client.GenericOneShot(ctx, c, "/system/identity/print", nil, func(s *proto.Sentence) (string, error) {
		var id identity
		if err := proto.Decode(s, &id, false); err != nil {
			return "", err
		}
		return id.Name, nil
	})
	if err != nil {
		return err
	}
	fmt.Printf("Name: %q\n", name)

	if !*full {
		return nil
	}

	r, err := ops.New(c).SystemResources(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Uptime: %s\n", r.Uptime)
	fmt.Printf("Version: %s\n", r.Version)
	fmt.Printf("Build time: %s\n", r.BuildTime)
	fmt.Printf("Board: %s\n", r.BoardName)
	fmt.Printf("Arch: %s\n", r.ArchitectureName)
	fmt.Printf("Memory (free/total): %d / %d\n", r.FreeMemory, r.TotalMemory)
	fmt.Printf("HDD (free/total): %d / %d\n", r.FreeHddSpace, r.TotalHddSpace)
	return nil
}

func runActiveUsers(args []string) error {
	fs := flag.NewFlagSet("active-users", flag.ExitOnError)
	var g globalFlags
	g.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	c, err := dialAndLogin(ctx, g)
	if err != nil {
		return err
	}
	defer c.Close()

	stream, tag, err := ops.New(c).ActiveUsers(ctx)
	if err != nil {
		return err
	}
	cancelOnInterrupt(c, tag)

	fmt.Println("Listening for active users...")
	for {
		u, err := stream.Next()
		if errors.Is(err, client.ErrEndOfStream) {
			return nil
		}
		if err != nil {
			return err
		}
		if u.IsDead {
			fmt.Printf("User id %s disconnected\n", u.ID)
			continue
		}
		fmt.Printf("User %q (id: %s) logged in via %s from %s\n", u.Name, u.ID, u.Via, u.Address)
	}
}

func runCustom(args []string) error {
	fs := flag.NewFlagSet("custom", flag.ExitOnError)
	var g globalFlags
	g.register(fs)
	oneOff := fs.Bool("one-off", false, "run command as a one-shot call")
	arrayList := fs.Bool("array-list", false, "run command as a bounded array call")
	listen := fs.Bool("listen", false, "run command as an unbounded streaming call")
	proplist := fs.String("proplist", "", "set the .proplist attribute on the outgoing call")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) != 1 {
		return errors.New("custom requires exactly one COMMAND argument")
	}
	command := rest[0]

	shapes := 0
	for _, b := range []bool{*oneOff, *arrayList, *listen} {
		if b {
			shapes++
		}
	}
	if shapes != 1 {
		return errors.New("exactly one of --one-off, --array-list, --listen is required")
	}

	ctx := context.Background()
	c, err := dialAndLogin(ctx, g)
	if err != nil {
		return err
	}
	defer c.Close()

	var callArgs []client.Arg
	if *proplist != "" {
		callArgs = append(callArgs, client.Arg{Key: ".proplist", Value: *proplist})
	}

	switch {
	case *oneOff:
		m, err := client.GenericOneShot(ctx, c, command, callArgs, decodeAttrMap)
		if err != nil {
			return err
		}
		printAttrMap(m)
		return nil

	case *arrayList:
		ms, err := client.GenericArray(ctx, c, command, callArgs, decodeAttrMap)
		if err != nil {
			return err
		}
		for _, m := range ms {
			printAttrMap(m)
		}
		return nil

	default: // *listen
		stream, tag, err := client.GenericStreaming(ctx, c, command, callArgs, decodeAttrMap)
		if err != nil {
			return err
		}
		cancelOnInterrupt(c, tag)

		for {
			m, err := stream.Next()
			if errors.Is(err, client.ErrEndOfStream) {
				return nil
			}
			if err != nil {
				return err
			}
			printAttrMap(m)
		}
	}
}

// decodeAttrMap decodes a reply sentence generically: every =key=value
// attribute word becomes a map entry, for commands whose reply shape is not
// known ahead of time to the CLI.
func decodeAttrMap(s *proto.Sentence) (map[string]string, error) {
	m := make(map[string]string, len(s.Attrs))
	for _, a := range s.Attrs {
		m[a.Name] = a.Value
	}
	return m, nil
}

func printAttrMap(m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s=%s\n", k, m[k])
	}
	fmt.Println()
}

// cancelOnInterrupt sends /cancel for tag the first time the process
// receives SIGINT, so a "custom --listen" or "active-users" run can be
// stopped cleanly instead of just dropping the connection.
func cancelOnInterrupt(c *client.Client, tag string) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		_ = c.Cancel(context.Background(), tag)
	}()
}
