// Package cli handles cmd line input and suggestions for DBG and testing various features
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/uninav/navcore/internal/logger"
	"github.com/uninav/navcore/internal/utils"
	"github.com/uninav/navcore/pkg/debounce"
	"github.com/uninav/navcore/pkg/suggest"
)

// InputHandler processes user input from stdin, showing the ranked
// suggestions a search bar would render. Rendering goes through the same
// debouncer the search bar uses, so pasting many lines quickly only
// renders the last one. Slash commands exercise history and completion.
type InputHandler struct {
	engine         *suggest.Engine
	opts           suggest.Options
	maxQueryLength int
	debouncer      *debounce.Debouncer
	out            *log.Logger
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(engine *suggest.Engine, opts suggest.Options, maxQueryLength int, delay time.Duration) *InputHandler {
	return &InputHandler{
		engine:         engine,
		opts:           opts,
		maxQueryLength: maxQueryLength,
		debouncer:      debounce.New(delay),
		out:            logger.Quiet(""),
	}
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin,
// and passes the trimmed input to handleInput() for processing.
// Loop terminates if an error occurs while reading from stdin
func (h *InputHandler) Start() error {
	h.out.Print("NavCore CLI [BETA]")
	reader := bufio.NewReader(os.Stdin)
	h.out.Print("type a partial search and press Enter to see suggestions (Ctrl+C to exit):")
	h.out.Print("commands: /save <q>  /tab <q>  /history  /clear")

	for {
		h.out.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			h.debouncer.Flush()
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		h.handleInput(line)
	}
}

// handleInput routes a line: slash commands run immediately and cancel any
// pending render, plain queries are rendered through the debouncer.
func (h *InputHandler) handleInput(line string) {
	if strings.HasPrefix(line, "/") {
		h.debouncer.Cancel()
		h.handleCommand(line)
		return
	}

	if len(line) > h.maxQueryLength {
		log.Errorf("Query too long: %s", line)
		return
	}

	h.debouncer.Trigger(func() {
		h.render(line)
	})
}

func (h *InputHandler) handleCommand(line string) {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "/save":
		if rest == "" {
			log.Error("Usage: /save <query>")
			return
		}
		h.engine.SaveToHistory(rest)
		h.out.Printf("Saved %q to history", rest)
	case "/tab":
		if rest == "" {
			log.Error("Usage: /tab <query>")
			return
		}
		text, ok := h.engine.TabCompletion(rest)
		if !ok {
			log.Warnf("No completion for '%s'", rest)
			return
		}
		h.out.Printf("'%s' -> '%s'", rest, text)
	case "/history":
		entries := h.engine.History()
		if len(entries) == 0 {
			log.Warn("History is empty")
			return
		}
		for i, e := range entries {
			h.out.Printf("%2d. %s", i+1, e)
		}
	case "/clear":
		h.engine.ClearHistory()
		h.out.Print("History cleared")
	default:
		log.Errorf("Unknown command: %s", cmd)
	}
}

// render runs one suggestion pass and pretty prints it.
func (h *InputHandler) render(query string) {
	start := time.Now()
	log.Debug("Processing request for", "query", query)

	candidates := h.engine.Suggestions(query, h.opts)

	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for query '%s'", elapsed, query)

	if len(candidates) == 0 {
		log.Warnf("No suggestions found for query: '%s'", query)
		return
	}

	h.out.Printf("Found %d suggestions for query '%s':", len(candidates), query)
	for i, c := range candidates {
		clText := fmt.Sprintf("\033[38;5;75m%s\033[0m", c.Text)
		h.out.Printf("%2d. %-40s (%-10s conf: %s)", i+1, clText, c.Source, utils.FormatConfidence(c.Confidence))
	}
}
