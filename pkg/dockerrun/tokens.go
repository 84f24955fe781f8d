package dockerrun

import (
	"strconv"
	"strings"
)

// Section identifies the semantic block a flag group belongs to. Multiline
// rendering keeps groups of one section together.
type Section int

const (
	SectionIdentity Section = iota
	SectionMisc
	SectionPorts
	SectionAddHosts
	SectionEnv
	SectionLabels
	SectionVolumes
	SectionExtra
)

var sectionNames = map[Section]string{
	SectionIdentity: "identity",
	SectionMisc:     "misc",
	SectionPorts:    "ports",
	SectionAddHosts: "add-hosts",
	SectionEnv:      "env",
	SectionLabels:   "labels",
	SectionVolumes:  "volumes",
	SectionExtra:    "extra",
}

func (s Section) String() string {
	if name, ok := sectionNames[s]; ok {
		return name
	}
	return "section(" + strconv.Itoa(int(s)) + ")"
}

// Token is one shell word. Verbatim tokens are emitted exactly as stored;
// the others go through Quote at render time.
type Token struct {
	Text     string
	Verbatim bool
}

// FlagGroup is one or more adjacent tokens forming a single option. A group
// is never split across lines.
type FlagGroup struct {
	Section Section
	Tokens  []Token
}

func plain(s string) Token    { return Token{Text: s} }
func verbatim(s string) Token { return Token{Text: s, Verbatim: true} }

func group(section Section, tokens ...Token) FlagGroup {
	return FlagGroup{Section: section, Tokens: tokens}
}

// BuildTokens converts cfg into flag groups in the fixed emission order:
// name, restart, network, ports, add-hosts, env, labels, volumes, extra
// args. The image reference is not a group; see Config.ImageRef.
//
// Incomplete rows are skipped here, so the renderer never sees a partial
// flag.
func BuildTokens(cfg Config) []FlagGroup {
	groups := []FlagGroup{
		group(SectionIdentity, verbatim("--name"), plain(cfg.Name)),
	}

	if cfg.RestartPolicy != "" {
		groups = append(groups, group(SectionMisc, verbatim("--restart"), plain(string(cfg.RestartPolicy))))
	}
	if !isBlank(cfg.Network) {
		groups = append(groups, group(SectionMisc, verbatim("--network"), plain(cfg.Network)))
	}

	groups = append(groups, portGroups(cfg.Ports)...)
	groups = append(groups, addHostGroups(cfg.AddHosts)...)
	groups = append(groups, envGroups(cfg.EnvVars)...)
	groups = append(groups, labelGroups(cfg.Labels)...)
	groups = append(groups, volumeGroups(cfg.Volumes)...)
	groups = append(groups, extraGroups(cfg.ExtraArgs)...)

	return groups
}

func portGroups(ports []Port) []FlagGroup {
	var out []FlagGroup
	for _, p := range ports {
		if p.Container == nil {
			continue
		}
		spec := strconv.Itoa(*p.Container)
		if p.Host != nil {
			spec = strconv.Itoa(*p.Host) + ":" + spec
		}
		if p.Protocol != "" {
			spec += "/" + string(p.Protocol)
		}
		out = append(out, group(SectionPorts, verbatim("-p"), plain(spec)))
	}
	return out
}

func addHostGroups(hosts []AddHost) []FlagGroup {
	var out []FlagGroup
	for _, h := range hosts {
		if isBlank(h.Host) || isBlank(h.IP) {
			continue
		}
		out = append(out, group(SectionAddHosts, plain("--add-host="+h.Host+":"+h.IP)))
	}
	return out
}

// envGroups always double-quotes the KEY=VALUE payload, whitespace or not.
func envGroups(vars []KeyValue) []FlagGroup {
	var out []FlagGroup
	for _, e := range vars {
		if isBlank(e.Key) {
			continue
		}
		out = append(out, group(SectionEnv, verbatim("-e"), verbatim(forceQuote(e.Key+"="+e.Value))))
	}
	return out
}

// labelGroups quote key and value independently, and only when they
// contain whitespace: --label note="hello world".
func labelGroups(labels []KeyValue) []FlagGroup {
	var out []FlagGroup
	for _, l := range labels {
		if isBlank(l.Key) {
			continue
		}
		out = append(out, group(SectionLabels, verbatim("--label"), verbatim(Quote(l.Key)+"="+Quote(l.Value))))
	}
	return out
}

func volumeGroups(volumes []Volume) []FlagGroup {
	var out []FlagGroup
	for _, v := range volumes {
		if isBlank(v.Host) || isBlank(v.Container) {
			continue
		}
		spec := v.Host + ":" + v.Container
		if v.Mode != "" {
			spec += ":" + string(v.Mode)
		}
		out = append(out, group(SectionVolumes, verbatim("-v"), plain(spec)))
	}
	return out
}

// extraGroups splits the free-form string on whitespace; each word becomes
// its own verbatim group.
func extraGroups(extra string) []FlagGroup {
	fields := strings.Fields(extra)
	out := make([]FlagGroup, 0, len(fields))
	for _, f := range fields {
		out = append(out, group(SectionExtra, verbatim(f)))
	}
	return out
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
