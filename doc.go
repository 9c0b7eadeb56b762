/*
Package iterate generates and refines hierarchical task decompositions
with a local LLM, in the record format used by the Universal Automation
Wiki.

Every stage consumes a JSON input document and produces a JSON record
wrapped in a common envelope (uuid, date_created, task, time_taken).
The central stages are tree generation, which decomposes a task into a
recursive tree of steps, and node expansion, which grows one node of an
existing tree and records which node was expanded as an index path.

# Usage

Wire a pipeline from configuration and run stages through the registry:

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/universal-automation-wiki/iterate"
		"github.com/universal-automation-wiki/iterate/pkg/config"
	)

	func main() {
		p, err := iterate.New(config.Default())
		if err != nil {
			log.Fatal(err)
		}

		record, err := p.RunStage(context.Background(), "hallucinate-tree", map[string]any{
			"task":  "Bake bread",
			"depth": 2,
		})
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%+v\n", record)
	}

Stage records can be persisted through the Store, full multi-stage runs
go through Flows, and the HTTP and MCP adapters expose the same stages
to other processes.
*/
package iterate
