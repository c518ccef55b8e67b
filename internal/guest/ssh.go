// Package guest builds ssh invocations reaching a VM's guest OS.
package guest

import (
	"github.com/alessio/shellescape"
)

// Target describes how to reach the guest over ssh.
type Target struct {
	User     string
	Host     string
	Port     string
	Identity string
	Options  []string
}

// NewTarget returns the target for a guest. A guest with an IP is reached
// directly; otherwise through the forwarded port on localhost.
func NewTarget(ip, port, user, identity string, options []string) Target {
	t := Target{User: user, Identity: identity, Options: options}
	if ip != "" {
		t.Host = ip
		return t
	}
	t.Host = "localhost"
	t.Port = port
	return t
}

// Address returns user@host, or host when no user is set.
func (t Target) Address() string {
	if t.User == "" {
		return t.Host
	}
	return t.User + "@" + t.Host
}

// Args returns the ssh argv (including "ssh") running remote on the guest.
// An empty remote opens a login shell. tty forces pseudo-terminal
// allocation.
func (t Target) Args(tty bool, remote string) []string {
	args := []string{"ssh"}
	if t.Port != "" {
		args = append(args, "-p", t.Port)
	}
	if t.Identity != "" {
		args = append(args, "-i", t.Identity)
	}
	for _, opt := range t.Options {
		args = append(args, "-o", opt)
	}
	if tty {
		args = append(args, "-t")
	}
	args = append(args, t.Address())
	if remote != "" {
		args = append(args, remote)
	}
	return args
}

// RemoteCommand joins argv into the command line the remote shell runs. A
// single argument is passed through untouched so shell syntax in it keeps
// working; several arguments are quoted individually.
func RemoteCommand(argv []string) string {
	if len(argv) == 1 {
		return argv[0]
	}
	return shellescape.QuoteCommand(argv)
}
