package repl

import (
	"regexp"
	"strings"

	"github.com/Shopify/go-lua"
)

const (
	luaPrompt         = "> "
	luaContinuePrompt = ">> "
)

var luaExit = regexp.MustCompile(`^[ \t]*os\.exit\(\)`)

// LuaRepl drives a Lua interpreter the way its interactive shell does:
// expressions are evaluated and their results printed, incomplete chunks
// switch to the continuation prompt, and errors are printed rather than
// stopping the session.
type LuaRepl struct {
	state   *lua.State
	printed strings.Builder
	pending []string
}

// NewLuaRepl returns a fresh interpreter session with the standard
// libraries opened and print capturing installed.
func NewLuaRepl() *LuaRepl {
	l := lua.NewState()
	lua.OpenLibraries(l)

	r := &LuaRepl{state: l}
	l.Register("print", r.capturePrint)
	return r
}

// Prompt returns "> ", or ">> " while a multi-line chunk is open.
func (r *LuaRepl) Prompt() string {
	if len(r.pending) > 0 {
		return luaContinuePrompt
	}
	return luaPrompt
}

// WillTerminate reports whether line is the session-ending os.exit() call.
func (r *LuaRepl) WillTerminate(line string) bool {
	return luaExit.MatchString(line)
}

// Eval runs one script line, buffering it while the chunk is incomplete.
func (r *LuaRepl) Eval(line string) (string, error) {
	r.printed.Reset()
	r.pending = append(r.pending, line)
	source := strings.Join(r.pending, "\n")

	// The interactive shell first tries the line as an expression so bare
	// expressions echo their value, then as a statement chunk.
	ok, exprIncomplete, _ := r.tryLoad("return " + source)
	if !ok {
		stmtOK, stmtIncomplete, message := r.tryLoad(source)
		if !stmtOK {
			if exprIncomplete || stmtIncomplete {
				return "", nil
			}
			r.pending = r.pending[:0]
			return message + "\n", nil
		}
	}
	r.pending = r.pending[:0]

	if err := r.state.ProtectedCall(0, lua.MultipleReturns, 0); err != nil {
		message := r.popMessage(err)
		return r.printed.String() + message + "\n", nil
	}

	r.printReturned()
	return r.printed.String(), nil
}

// tryLoad compiles source, leaving the chunk on the stack on success. On
// failure the stack is cleared and the error is classified: incomplete
// means the chunk merely needs continuation lines.
func (r *LuaRepl) tryLoad(source string) (ok, incomplete bool, message string) {
	err := r.state.Load(strings.NewReader(source), "=stdin", "")
	if err == nil {
		return true, false, ""
	}
	message = r.popMessage(err)
	if strings.Contains(message, "<eof>") {
		return false, true, ""
	}
	return false, false, message
}

// popMessage extracts the error message the interpreter left on the stack,
// falling back to the Go error text.
func (r *LuaRepl) popMessage(err error) string {
	message := err.Error()
	if r.state.Top() > 0 {
		if s, ok := r.state.ToString(-1); ok && s != "" {
			message = s
		}
	}
	r.state.SetTop(0)
	return message
}

// printReturned echoes chunk return values the way the interactive shell
// does, then clears the stack.
func (r *LuaRepl) printReturned() {
	n := r.state.Top()
	if n == 0 {
		return
	}
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, r.stringify(i))
	}
	r.state.SetTop(0)
	r.printed.WriteString(strings.Join(parts, "\t"))
	r.printed.WriteByte('\n')
}

func (r *LuaRepl) capturePrint(l *lua.State) int {
	n := l.Top()
	for i := 1; i <= n; i++ {
		if i > 1 {
			r.printed.WriteByte('\t')
		}
		r.printed.WriteString(r.stringify(i))
	}
	r.printed.WriteByte('\n')
	return 0
}

func (r *LuaRepl) stringify(index int) string {
	if s, ok := r.state.ToString(index); ok {
		return s
	}
	return r.state.TypeOf(index).String()
}
