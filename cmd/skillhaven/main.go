// Package main implements the command line tool of the course marketplace.
//
//  skillhaven run --scenario pottery.yml --db /tmp/haven.db --metrics
//  skillhaven course --db /tmp/haven.db --id 1
//  skillhaven enrollment --db /tmp/haven.db --student wallet_1 --id 1
//
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Veronica1088/clarity-skill-haven/cli"
	"github.com/Veronica1088/clarity-skill-haven/cli/urfave"
)

func main() {
	err := run(os.Args, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	builder := urfave.NewBuilder("skillhaven", nil)
	builder.SetUsage("course marketplace on a development chain")
	builder.SetWriter(out)

	cmd := builder.SetCommand("run")
	cmd.SetDescription("play a scenario on a development network")
	cmd.SetFlags(
		cli.StringFlag{
			Name:     "scenario",
			Usage:    "path to the YAML scenario",
			Required: true,
		},
		cli.StringFlag{
			Name:  "db",
			Usage: "path to the database to persist the chain, in memory if empty",
		},
		cli.BoolFlag{
			Name:  "metrics",
			Usage: "print the metrics at the end of the scenario",
		},
	)
	cmd.SetAction(runAction{out: out}.Execute)

	cmd = builder.SetCommand("course")
	cmd.SetDescription("show a course of a persisted chain")
	cmd.SetFlags(
		cli.StringFlag{
			Name:     "db",
			Usage:    "path to the database of the chain",
			Required: true,
		},
		cli.IntFlag{
			Name:  "id",
			Usage: "identifier of the course, or zero to show the number of courses",
		},
	)
	cmd.SetAction(courseAction{out: out}.Execute)

	cmd = builder.SetCommand("enrollment")
	cmd.SetDescription("show the enrollment of a student of a persisted chain")
	cmd.SetFlags(
		cli.StringFlag{
			Name:     "db",
			Usage:    "path to the database of the chain",
			Required: true,
		},
		cli.StringFlag{
			Name:     "student",
			Usage:    "wallet name or identity of the student",
			Required: true,
		},
		cli.IntFlag{
			Name:     "id",
			Usage:    "identifier of the course",
			Required: true,
		},
	)
	cmd.SetAction(enrollmentAction{out: out}.Execute)

	return builder.Build().Run(args)
}
