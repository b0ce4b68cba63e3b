// Command mcp-client is a small interactive REPL for exercising the
// fleet-mcp server: it spawns the server as a subprocess and calls its tools.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	flag.Parse()
	args := flag.Args()

	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: mcp-client <server-command> [<args>]")
		fmt.Fprintln(os.Stderr, "Example: mcp-client ./fleet-mcp")
		os.Exit(2)
	}

	ctx := context.Background()

	// Start the server as a subprocess
	cmd := exec.Command(args[0], args[1:]...)
	transport := &mcp.CommandTransport{Command: cmd}

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "fleetmon-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer session.Close()

	fmt.Println("Connected to fleet MCP server.")
	fmt.Println("Available commands:")
	fmt.Println("  /tools                   - List available tools")
	fmt.Println("  /scores [profile]        - Latest scores and cluster summary")
	fmt.Println("  /rank [asc]              - Hosts ranked by score")
	fmt.Println("  /anomalies [host]        - Recent threshold breaches")
	fmt.Println("  /perf <host>             - Recent samples for one host")
	fmt.Println("  /trend <host> [seconds]  - Bucketed trend for one host")
	fmt.Println("  /exit                    - Exit the client")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		parts := strings.Fields(input)

		switch parts[0] {
		case "/exit":
			fmt.Println("Goodbye!")
			return

		case "/tools":
			listTools(ctx, session)

		case "/scores":
			toolArgs := map[string]interface{}{}
			if len(parts) > 1 {
				toolArgs["profile"] = parts[1]
			}
			callTool(ctx, session, "latest_scores", toolArgs)

		case "/rank":
			toolArgs := map[string]interface{}{}
			if len(parts) > 1 && parts[1] == "asc" {
				toolArgs["ascending"] = true
			}
			callTool(ctx, session, "score_rank", toolArgs)

		case "/anomalies":
			toolArgs := map[string]interface{}{}
			if len(parts) > 1 {
				toolArgs["server_name"] = parts[1]
			}
			callTool(ctx, session, "anomalies", toolArgs)

		case "/perf":
			if len(parts) < 2 {
				fmt.Println("usage: /perf <host>")
				continue
			}
			callTool(ctx, session, "host_performance", map[string]interface{}{
				"server_name": parts[1],
			})

		case "/trend":
			if len(parts) < 2 {
				fmt.Println("usage: /trend <host> [seconds]")
				continue
			}
			toolArgs := map[string]interface{}{"server_name": parts[1]}
			if len(parts) > 2 {
				if secs, err := strconv.Atoi(parts[2]); err == nil {
					toolArgs["interval_seconds"] = secs
				}
			}
			callTool(ctx, session, "host_trend", toolArgs)

		default:
			fmt.Printf("unknown command %q\n", parts[0])
		}
	}

	if err := scanner.Err(); err != nil {
		log.Printf("Scanner error: %v", err)
	}
}

func listTools(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("Available Tools:")
	for tool, err := range session.Tools(ctx, nil) {
		if err != nil {
			log.Printf("Error listing tools: %v", err)
			return
		}
		fmt.Printf("  - %s: %s\n", tool.Name, tool.Description)
	}
	fmt.Println()
}

func callTool(ctx context.Context, session *mcp.ClientSession, toolName string, args map[string]interface{}) {
	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		log.Printf("Error calling tool: %v", err)
		return
	}

	printResult(result)
}

func printResult(result *mcp.CallToolResult) {
	if result.IsError {
		fmt.Printf("Error: ")
	}

	for _, content := range result.Content {
		switch v := content.(type) {
		case *mcp.TextContent:
			fmt.Println(v.Text)
		default:
			jsonData, err := json.MarshalIndent(content, "", "  ")
			if err != nil {
				fmt.Printf("%+v\n", content)
			} else {
				fmt.Println(string(jsonData))
			}
		}
	}
	fmt.Println()
}
