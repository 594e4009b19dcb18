package mpv

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/dexterlb/mpvipc"
	"github.com/vlcremote/vlcremote/log"
)

const (
	socketWaitRetries = 20
	socketWaitDelay   = 150 * time.Millisecond
	quitTimeout       = 3 * time.Second
)

// Process is an mpv started by Launch.
type Process struct {
	Socket string

	cmd    *exec.Cmd
	exited chan struct{}
}

// Launch starts an idle mpv with an IPC server on socket and waits until the
// socket accepts connections. Media targets, if any, are loaded into its
// playlist.
func Launch(ctx context.Context, socket string, media ...string) (*Process, error) {
	if _, err := exec.LookPath("mpv"); err != nil {
		return nil, fmt.Errorf("mpv not found: %w", err)
	}

	args, err := launchArgs(socket, media)
	if err != nil {
		return nil, err
	}

	// a stale socket from a crashed instance would fool waitForSocket
	_ = os.Remove(socket)

	cmd := exec.Command("mpv", args...)
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start mpv: %w", err)
	}

	p := &Process{Socket: socket, cmd: cmd, exited: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(p.exited)
	}()

	if err := p.waitForSocket(ctx); err != nil {
		select {
		case <-p.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(cmd)
		}
		return nil, fmt.Errorf("mpv socket not ready: %w", err)
	}

	log.Infof("mpv started with pid %d on %s", cmd.Process.Pid, socket)
	return p, nil
}

func launchArgs(socket string, media []string) ([]string, error) {
	if socket == "" {
		return nil, errors.New("empty socket path")
	}

	args := []string{
		"--no-terminal",
		"--really-quiet",
		"--idle=yes",
		"--force-window=yes",
		fmt.Sprintf("--input-ipc-server=%s", socket),
	}

	for _, m := range media {
		target, err := sanitizeMediaTarget(m)
		if err != nil {
			return nil, fmt.Errorf("invalid media target %q: %w", m, err)
		}
		args = append(args, target)
	}

	return args, nil
}

// Wait returns a channel closed when mpv exits.
func (p *Process) Wait() <-chan struct{} {
	return p.exited
}

// Close asks mpv to quit, kills it if it does not, and removes the socket.
func (p *Process) Close() error {
	conn := mpvipc.NewConnection(p.Socket)
	if err := conn.Open(); err == nil {
		_, _ = conn.Call("quit")
		_ = conn.Close()
	}

	select {
	case <-p.exited:
	case <-time.After(quitTimeout):
		_ = killProcess(p.cmd)
	}

	if err := os.Remove(p.Socket); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (p *Process) waitForSocket(ctx context.Context) error {
	for i := 0; i < socketWaitRetries; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.exited:
			return errors.New("mpv exited before socket was ready")
		case <-time.After(socketWaitDelay):
		}

		conn := mpvipc.NewConnection(p.Socket)
		if err := conn.Open(); err == nil {
			_ = conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", p.Socket, socketWaitRetries)
}

// sanitizeMediaTarget keeps anything that could be read as a flag away from
// the mpv command line.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", errors.New("empty target")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", errors.New("control characters in target")
	}

	if strings.HasPrefix(l, "-") {
		return "", errors.New("target must not start with '-'")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", err
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "file":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported scheme %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}
