// Command primec is the interactive client: it sends protocol frames typed
// as plain commands and a background goroutine prints server responses as
// they arrive.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"

	"primecalc/go-server/internal/protocol"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:9090", "server address")
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		log.Fatalf("primec: cannot connect to %s: %v", *addr, err)
	}
	defer conn.Close()

	go printResponses(conn)

	fmt.Println("Connected. Available commands:")
	fmt.Println("  prime <n>      check whether n is prime")
	fmt.Println("  range <a> <b>  list primes in the interval")
	fmt.Println("  count <a> <b>  count primes in the interval")
	fmt.Println("  stats          server statistics")
	fmt.Println("  exit           quit")

	stdin := bufio.NewScanner(os.Stdin)
	fmt.Print("primec> ")
	for stdin.Scan() {
		msg, err := parseInput(stdin.Text())
		if err != nil {
			fmt.Printf("[error] %v\nprimec> ", err)
			continue
		}
		if msg == nil {
			fmt.Println("Bye.")
			return
		}
		if msg.Command == "" {
			fmt.Print("primec> ")
			continue
		}
		frame, err := encodeRequest(*msg)
		if err != nil {
			fmt.Printf("[error] %v\nprimec> ", err)
			continue
		}
		if _, err := conn.Write(frame); err != nil {
			log.Fatalf("primec: connection lost: %v", err)
		}
	}
}

// parseInput turns one input line into a request. A nil message with nil
// error means quit; an empty command means skip the line.
func parseInput(raw string) (*protocol.Message, error) {
	parts := strings.Fields(raw)
	if len(parts) == 0 {
		return &protocol.Message{}, nil
	}
	command := strings.ToLower(parts[0])
	switch {
	case command == "quit" || command == "exit":
		return nil, nil
	case command == "prime" && len(parts) == 2:
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("prime needs an integer, got %q", parts[1])
		}
		return &protocol.Message{Command: "prime", Data: map[string]any{"number": n}}, nil
	case (command == "range" || command == "count") && len(parts) == 3:
		start, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("%s needs integers, got %q", command, parts[1])
		}
		end, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, fmt.Errorf("%s needs integers, got %q", command, parts[2])
		}
		return &protocol.Message{Command: command, Data: map[string]any{"start": start, "end": end}}, nil
	case command == "stats" && len(parts) == 1:
		return &protocol.Message{Command: "stats", Data: map[string]any{}}, nil
	}
	return nil, fmt.Errorf("invalid command; use prime <n>, range <a> <b>, count <a> <b> or stats")
}

func encodeRequest(msg protocol.Message) ([]byte, error) {
	frame, err := json.Marshal(map[string]any{"command": msg.Command, "data": msg.Data})
	if err != nil {
		return nil, err
	}
	return append(frame, '\n'), nil
}

// printResponses drains server frames and pretty-prints them until the
// server closes the connection.
func printResponses(conn net.Conn) {
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			fmt.Println("\n[server closed the connection]")
			os.Exit(0)
		}
		var resp struct {
			Status  string          `json:"status"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(line, &resp); err != nil {
			fmt.Printf("\n[malformed response]: %q\nprimec> ", line)
			continue
		}
		fmt.Printf("\n[%s] %s\nprimec> ", resp.Status, indentPayload(resp.Payload))
	}
}

func indentPayload(raw json.RawMessage) string {
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return string(raw)
	}
	return out.String()
}
