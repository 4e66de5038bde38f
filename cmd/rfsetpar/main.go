// Command rfsetpar edits one setting of a configuration file.
//
// Usage:
//
//	rfsetpar config.yaml section key value
//	rfsetpar -init config.yaml
//
// A section of "-" addresses a top-level key. The file is only rewritten
// when the edited configuration still validates.
//
// Examples:
//
//	rfsetpar rf.yaml decon gauss 2.5
//	rfsetpar rf.yaml path rfpath /data/rf
//	rfsetpar rf.yaml - workers 8
//	rfsetpar -init rf.yaml
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/AlbertSeismo/RFs-Seispy/rf/config"
)

func main() {
	initFile := flag.Bool("init", false, "write the default configuration to the file and exit")
	force := flag.Bool("f", false, "with -init, overwrite an existing file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rfsetpar [flags] config.yaml section key value\n")
		fmt.Fprintf(os.Stderr, "       rfsetpar -init [-f] config.yaml\n\n")
		fmt.Fprintf(os.Stderr, "Sets one key of a receiver-function configuration file.\n")
		fmt.Fprintf(os.Stderr, "Use \"-\" as section for top-level keys.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  rfsetpar rf.yaml decon gauss 2.5\n")
		fmt.Fprintf(os.Stderr, "  rfsetpar rf.yaml - workers 8\n")
		fmt.Fprintf(os.Stderr, "  rfsetpar -init rf.yaml\n")
	}
	flag.Parse()

	if *initFile {
		if flag.NArg() != 1 {
			flag.Usage()
			os.Exit(2)
		}
		path := flag.Arg(0)
		if _, err := os.Stat(path); err == nil && !*force {
			fatal(fmt.Errorf("%s exists, use -f to overwrite", path))
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			fatal(err)
		}
		if err := config.Write(path, config.Default()); err != nil {
			fatal(err)
		}
		return
	}

	if flag.NArg() != 4 {
		flag.Usage()
		os.Exit(2)
	}
	path, section, key, value := flag.Arg(0), flag.Arg(1), flag.Arg(2), flag.Arg(3)
	if section == "-" {
		section = ""
	}
	if err := config.Set(path, section, key, value); err != nil {
		fatal(err)
	}
	fmt.Printf("%s: set %s\n", path, name(section, key))
}

func name(section, key string) string {
	if section == "" {
		return key
	}
	return section + "." + key
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
