//go:build e2e && unix

package e2e

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"
	"unsafe"

	"github.com/creack/pty"
)

const ringSize = 1 << 20 // 1 MiB of scrollback

var binPath = "jetsetter_e2e"

// Key constants for better readability
const (
	KeyEnter = "\r"
	KeyEsc   = "\x1b"
	KeyTab   = "\t"
	KeyCtrlC = "\x03"
	KeySpace = " "
	KeyQuit  = "q"
)

// ANSI escape sequence regex for normalization - covers CSI, OSC, charset, keypad modes
var ansiRe = regexp.MustCompile(
	`(?:\x1b\[[0-9;?]*[ -/]*[@-~])|` + // CSI sequences
		`(?:\x1b\][^\x07]*\x07)|` + // OSC sequences
		`(?:\x1b[\(\)][A-Za-z])|` + // charset sequences
		`(?:\x1b=|\x1b>)|` + // keypad mode sequences
		`\r`, // carriage returns
)

// TUITestFramework drives the jetsetter binary through a pseudo terminal.
type TUITestFramework struct {
	t         *testing.T
	pty       *os.File
	tty       *os.File
	cmd       *exec.Cmd
	workspace string
	done      chan error

	// Ring buffer for continuous output capture
	mu   sync.Mutex
	buf  []byte
	head int
	full bool
}

// NewTUITest creates a framework with its own workspace; $HOME and the
// config dir point into it so user settings never leak in.
func NewTUITest(t *testing.T) *TUITestFramework {
	t.Helper()
	ws, err := os.MkdirTemp("", "jetsetter-e2e-*")
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	return &TUITestFramework{
		t:         t,
		buf:       make([]byte, ringSize),
		workspace: ws,
	}
}

// StateFile is the snapshot path inside the workspace.
func (tf *TUITestFramework) StateFile() string {
	return filepath.Join(tf.workspace, "packing.json")
}

func (tf *TUITestFramework) env() []string {
	return append(os.Environ(),
		"TERM=xterm-256color",
		"LC_ALL=C.UTF-8",
		"HOME="+tf.workspace,
		"XDG_CONFIG_HOME="+filepath.Join(tf.workspace, ".config"),
		"JETSETTER_STATE_FILE=",
		"JETSETTER_THEME=",
		"JETSETTER_COLOR=never",
	)
}

// StartApp launches the TUI with the given arguments in a PTY.
func (tf *TUITestFramework) StartApp(args ...string) error {
	tf.cmd = exec.Command(binPath, args...)
	tf.cmd.Env = tf.env()

	ptyFile, tty, err := pty.Open()
	if err != nil {
		return fmt.Errorf("failed to open pty: %w", err)
	}
	tf.pty = ptyFile
	tf.tty = tty
	tf.cmd.Stdout = tty
	tf.cmd.Stdin = tty
	tf.cmd.Stderr = tty

	if err := pty.Setsize(ptyFile, &pty.Winsize{Rows: 40, Cols: 120}); err != nil {
		// fall back to the raw ioctl
		ws := struct{ Row, Col, X, Y uint16 }{40, 120, 0, 0}
		syscall.Syscall(syscall.SYS_IOCTL, ptyFile.Fd(), uintptr(syscall.TIOCSWINSZ), uintptr(unsafe.Pointer(&ws)))
	}

	if err := tf.cmd.Start(); err != nil {
		ptyFile.Close()
		tty.Close()
		return fmt.Errorf("failed to start command: %w", err)
	}
	tf.done = make(chan error, 1)
	go func() { tf.done <- tf.cmd.Wait() }()

	tf.startReader()
	return nil
}

// RunCLI runs a one-shot subcommand and returns its plain combined output.
func (tf *TUITestFramework) RunCLI(args ...string) (string, error) {
	tf.t.Helper()
	cmd := exec.Command(binPath, args...)
	cmd.Env = tf.env()
	out, err := cmd.CombinedOutput()
	return ansiRe.ReplaceAllString(string(out), ""), err
}

func (tf *TUITestFramework) startReader() {
	go func() {
		buf := make([]byte, 8192)
		for {
			n, err := tf.pty.Read(buf)
			if n > 0 {
				tf.mu.Lock()
				for i := 0; i < n; i++ {
					tf.buf[tf.head] = buf[i]
					tf.head = (tf.head + 1) % ringSize
					if tf.head == 0 {
						tf.full = true
					}
				}
				tf.mu.Unlock()
			}
			if err != nil {
				return
			}
		}
	}()
}

// SendKeys sends keystrokes to the application
func (tf *TUITestFramework) SendKeys(keys string) error {
	tf.t.Helper()
	_, err := tf.pty.Write([]byte(keys))
	return err
}

// Type sends text one rune at a time so every keystroke gets its own update.
func (tf *TUITestFramework) Type(text string) error {
	tf.t.Helper()
	for _, r := range text {
		if err := tf.SendKeys(string(r)); err != nil {
			return err
		}
		time.Sleep(30 * time.Millisecond)
	}
	return nil
}

// Ready waits for the first frame.
func (tf *TUITestFramework) Ready() bool {
	tf.t.Helper()
	return tf.OutputContainsPlain("Unpacked Items", 5*time.Second)
}

// OutputContainsPlain checks if the normalized output contains text within a timeout.
func (tf *TUITestFramework) OutputContainsPlain(text string, timeout time.Duration) bool {
	tf.t.Helper()
	return tf.WaitFor(func(s string) bool {
		return strings.Contains(ansiRe.ReplaceAllString(s, ""), text)
	}, timeout)
}

// WaitFor waits for a predicate to be true in the output
func (tf *TUITestFramework) WaitFor(pred func(string) bool, timeout time.Duration) bool {
	tf.t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		if pred(tf.Snapshot()) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(25 * time.Millisecond)
	}
}

// Quit sends q and waits for the process to exit.
func (tf *TUITestFramework) Quit(timeout time.Duration) error {
	tf.t.Helper()
	if err := tf.SendKeys(KeyQuit); err != nil {
		return err
	}
	select {
	case err := <-tf.done:
		tf.cmd = nil
		return err
	case <-time.After(timeout):
		return fmt.Errorf("app did not exit within %s\n--- tail ---\n%s", timeout, tf.Tail(2048))
	}
}

// Snapshot returns the current contents of the ring buffer (thread-safe)
func (tf *TUITestFramework) Snapshot() string {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	if !tf.full {
		return string(tf.buf[:tf.head])
	}
	out := make([]byte, ringSize)
	copy(out, tf.buf[tf.head:])
	copy(out[ringSize-tf.head:], tf.buf[:tf.head])
	return string(out)
}

// Tail returns the last n bytes of normalized output.
func (tf *TUITestFramework) Tail(n int) string {
	s := ansiRe.ReplaceAllString(tf.Snapshot(), "")
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return s
}

// Cleanup closes the PTY, terminates the application and removes the workspace.
func (tf *TUITestFramework) Cleanup() {
	if tf.pty != nil {
		_ = tf.pty.Close()
		tf.pty = nil
	}
	if tf.tty != nil {
		_ = tf.tty.Close()
		tf.tty = nil
	}
	if tf.cmd != nil && tf.cmd.Process != nil {
		_ = tf.cmd.Process.Kill()
		<-tf.done
		tf.cmd = nil
	}
	if tf.workspace != "" {
		_ = os.RemoveAll(tf.workspace)
		tf.workspace = ""
	}
}

// section returns the lines of a grouped `ls` listing under heading, up to
// the next blank line.
func section(out, heading string) []string {
	var lines []string
	in := false
	for _, ln := range strings.Split(out, "\n") {
		ln = strings.Trim(ln, "│|+ ")
		switch {
		case ln == heading:
			in = true
		case in && ln == "":
			return lines
		case in:
			lines = append(lines, ln)
		}
	}
	return lines
}
