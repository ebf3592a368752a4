package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	propgraph "github.com/ritamzico/propgraph"
	"github.com/ritamzico/propgraph/internal/dsl"
	"github.com/ritamzico/propgraph/internal/schema"
)

var graphPath string

func main() {
	root := &cobra.Command{
		Use:   "propgraph",
		Short: "in-memory property-graph query engine",
	}
	root.PersistentFlags().StringVar(&graphPath, "graph", "", "path to a JSON graph file to load at startup (default: empty graph)")

	root.AddCommand(replCmd(), queryCmd(), saveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadOrNew() (*propgraph.PGraph, error) {
	if graphPath == "" {
		return propgraph.New(schema.Inferred), nil
	}
	return propgraph.LoadFile(graphPath)
}

const replHelp = `propgraph interactive session

Type a DSL statement or query, or one of:
  help          show this message
  exit / quit   end the session

Statements:
  CREATE NODE <id> [IN GROUP <g>, ...] [{ key: value, ... }]
  CREATE EDGE FROM <id> TO <id> [IN GROUP <g>, ...] [{ key: value, ... }]
  DELETE NODE <id>
  DELETE EDGE <index>

Queries:
  NODES [WHERE <attr> <op> <value> [AND ...]] [GROUP BY <attr>] RETURN <proj>
  EDGES [WHERE <attr> <op> <value> [AND ...]] [GROUP BY <attr>] RETURN <proj>

  <proj> ::= INDEX | ATTR(<name>) | COUNT
           | SUM(<name>) | MEAN(<name>) | MEDIAN(<name>) | MODE(<name>)
           | STD(<name>) | VAR(<name>) | MAX(<name>) | MIN(<name>)
`

func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "start an interactive DSL session",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadOrNew()
			if err != nil {
				return err
			}
			parser := dsl.CreateParser(g)

			scanner := bufio.NewScanner(os.Stdin)
			fmt.Println(`propgraph — property-graph query engine. Type "help" for usage.`)

			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					return nil
				}
				line := strings.TrimSpace(scanner.Text())
				switch line {
				case "":
					continue
				case "exit", "quit":
					return nil
				case "help":
					fmt.Print(replHelp)
					continue
				}

				res, err := parser.ParseLine(line)
				if err != nil {
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
					continue
				}
				if res != nil {
					fmt.Println(res.String())
				}
			}
		},
	}
}

func queryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <dsl>",
		Short: "run a single DSL statement or query and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadOrNew()
			if err != nil {
				return err
			}
			parser := dsl.CreateParser(g)
			res, err := parser.ParseLine(args[0])
			if err != nil {
				return err
			}
			if res != nil {
				fmt.Println(res.String())
			}
			return nil
		},
	}
}

func saveCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "save",
		Short: "load --graph and write it back out as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadOrNew()
			if err != nil {
				return err
			}
			return g.SaveFile(out)
		},
	}
	cmd.Flags().StringVar(&out, "out", "graph.json", "output path")
	return cmd
}
