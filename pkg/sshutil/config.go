package sshutil

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// HostEntry is a concrete Host alias from an ssh config, offered as a
// remote sensor host by `sensdash config init`.
type HostEntry struct {
	Alias    string
	Hostname string
	User     string
}

// Label renders the entry for a selection list.
func (h HostEntry) Label() string {
	target := h.Hostname
	if target == "" || target == h.Alias {
		return h.Alias
	}
	if h.User != "" {
		target = h.User + "@" + target
	}
	return h.Alias + " (" + target + ")"
}

// ListHosts parses ~/.ssh/config.
func ListHosts() ([]HostEntry, error) {
	return ListHostsFile(filepath.Join(homeDir(), ".ssh", "config"))
}

// ListHostsFile returns the non-wildcard aliases of the ssh config at path,
// sorted. A missing file yields no hosts.
func ListHostsFile(path string) ([]HostEntry, error) {
	content, err := readConfigUntilMatch(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var hosts []HostEntry
	for _, h := range cfg.Hosts {
		for _, p := range h.Patterns {
			alias := p.String()
			if strings.ContainsAny(alias, "*?!") || seen[alias] {
				continue
			}
			seen[alias] = true
			hostname, _ := cfg.Get(alias, "HostName")
			user, _ := cfg.Get(alias, "User")
			hosts = append(hosts, HostEntry{Alias: alias, Hostname: hostname, User: user})
		}
	}
	sort.Slice(hosts, func(i, j int) bool { return hosts[i].Alias < hosts[j].Alias })
	return hosts, nil
}
