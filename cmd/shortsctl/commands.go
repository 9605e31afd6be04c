package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shortsd/internal/apiclient"

	json "github.com/goccy/go-json"
)

const defaultServer = "http://localhost:5002"

type commonFlags struct {
	server  string
	max     int
	out     string
	timeout time.Duration
}

func newFlagSet(name string, defMax int) (*flag.FlagSet, *commonFlags) {
	server := os.Getenv("SHORTSD_SERVER")
	if server == "" {
		server = defaultServer
	}
	cf := &commonFlags{}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.StringVar(&cf.server, "server", server, "shortsd base URL")
	fs.IntVar(&cf.max, "max", defMax, "Maximum number of results")
	fs.StringVar(&cf.out, "out", "", "Also write the JSON result to this file")
	fs.DurationVar(&cf.timeout, "timeout", 10*time.Minute, "Request timeout")
	return fs, cf
}

func (cf *commonFlags) client() *apiclient.Client {
	return apiclient.New(cf.server, cf.timeout)
}

// queryArg joins the positional arguments into one search query.
func queryArg(fs *flag.FlagSet) (string, error) {
	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		return "", fmt.Errorf("usage: shortsctl %s [flags] <query>", fs.Name())
	}
	return query, nil
}

func writeOut(path string, v any) error {
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	fmt.Println(mutedStyle.Render("saved to " + path))
	return nil
}

func runSearch(args []string) error {
	fs, cf := newFlagSet("search", 5)
	download := fs.Bool("download", false, "Download audio of the best ranked results on the server")
	fs.Parse(args)

	query, err := queryArg(fs)
	if err != nil {
		return err
	}
	fmt.Println(renderHeader(query, cf.max, *download))

	res, err := cf.client().SearchAndDownload(context.Background(), query, cf.max, *download)
	if err != nil {
		return err
	}
	fmt.Println(renderResult(res))
	return writeOut(cf.out, res)
}

func runLinks(args []string) error {
	fs, cf := newFlagSet("links", 10)
	fs.Parse(args)

	query, err := queryArg(fs)
	if err != nil {
		return err
	}
	fmt.Println(renderHeader(query, cf.max, false))

	res, err := cf.client().Links(context.Background(), query, cf.max)
	if err != nil {
		return err
	}
	fmt.Println(renderResult(res))
	return writeOut(cf.out, res)
}

func runDirect(args []string) error {
	fs, cf := newFlagSet("direct", 5)
	fs.Parse(args)

	query, err := queryArg(fs)
	if err != nil {
		return err
	}
	fmt.Println(renderHeader(query, cf.max, false))

	res, err := cf.client().DirectLinks(context.Background(), query, cf.max)
	if err != nil {
		return err
	}
	fmt.Println(renderResult(res))
	return writeOut(cf.out, res)
}

func runTop(args []string) error {
	fs, cf := newFlagSet("top", 0)
	fs.Parse(args)

	top, err := cf.client().Top(context.Background(), cf.max)
	if err != nil {
		return err
	}
	fmt.Println(renderTop(top))
	return writeOut(cf.out, top)
}

func runFetch(args []string) error {
	fs, cf := newFlagSet("fetch", 0)
	dir := fs.String("dir", ".", "Directory to save the audio file in")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("usage: shortsctl fetch [flags] <video_id>")
	}
	id := fs.Arg(0)

	tmp, err := os.CreateTemp(*dir, id+".*.part")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	name, err := cf.client().DownloadAudio(context.Background(), id, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	dest := filepath.Join(*dir, filepath.Base(name))
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return err
	}
	fmt.Println(successStyle.Render("saved " + dest))
	return nil
}
