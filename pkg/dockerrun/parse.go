package dockerrun

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/google/shlex"
)

// ErrNotRunCommand is returned by Parse for text that is not a docker run
// invocation.
var ErrNotRunCommand = errors.New("not a docker run command")

type flagKind int

const (
	flagName flagKind = iota
	flagRestart
	flagNetwork
	flagPublish
	flagEnv
	flagLabel
	flagVolume
	flagAddHost
)

var valueFlags = map[string]flagKind{
	"--name":     flagName,
	"--restart":  flagRestart,
	"--network":  flagNetwork,
	"--net":      flagNetwork,
	"-p":         flagPublish,
	"--publish":  flagPublish,
	"-e":         flagEnv,
	"--env":      flagEnv,
	"-l":         flagLabel,
	"--label":    flagLabel,
	"-v":         flagVolume,
	"--volume":   flagVolume,
	"--add-host": flagAddHost,
}

// Parse reads docker run text, compact or backslash-continued, back into a
// Config. Flags the record has no field for are kept, in order, in
// ExtraArgs. The last word is taken as the image reference.
//
// The result is validated with ValidateConfig, so a command without --name
// yields a *ValidationError.
func Parse(command string) (Config, error) {
	folded := strings.NewReplacer("\\\r\n", " ", "\\\n", " ").Replace(command)
	words, err := shlex.Split(folded)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrNotRunCommand, err)
	}

	args, err := runArgs(words)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	var extra []string
	flags := args[:len(args)-1]

	for i := 0; i < len(flags); i++ {
		word := flags[i]
		if word == "-d" || word == "--detach" {
			continue
		}

		name, value, inline := strings.Cut(word, "=")
		if !strings.HasPrefix(word, "--") {
			name, value, inline = word, "", false
		}
		kind, known := valueFlags[name]
		if !known {
			extra = append(extra, Quote(word))
			continue
		}
		if !inline {
			if i+1 >= len(flags) {
				return Config{}, fmt.Errorf("%w: flag %s needs a value", ErrNotRunCommand, name)
			}
			i++
			value = flags[i]
		}

		if !cfg.apply(kind, value) {
			extra = append(extra, name, Quote(value))
		}
	}

	cfg.Image, cfg.Tag = splitImageRef(args[len(args)-1])
	cfg.ExtraArgs = strings.Join(extra, " ")

	return ValidateConfig(cfg)
}

// runArgs strips the leading "docker run" (or "docker container run") and
// checks that an image is present.
func runArgs(words []string) ([]string, error) {
	switch {
	case len(words) >= 2 && words[0] == "docker" && words[1] == "run":
		words = words[2:]
	case len(words) >= 3 && words[0] == "docker" && words[1] == "container" && words[2] == "run":
		words = words[3:]
	default:
		return nil, ErrNotRunCommand
	}
	if len(words) == 0 || strings.HasPrefix(words[len(words)-1], "-") {
		return nil, fmt.Errorf("%w: missing image reference", ErrNotRunCommand)
	}
	return words, nil
}

// apply stores value in the field for kind. It reports false when the value
// has no structured representation and must be kept as extra args.
func (c *Config) apply(kind flagKind, value string) bool {
	switch kind {
	case flagName:
		c.Name = value
	case flagRestart:
		switch container.RestartPolicyMode(value) {
		case container.RestartPolicyAlways, container.RestartPolicyUnlessStopped, container.RestartPolicyOnFailure:
			c.RestartPolicy = RestartPolicy(value)
		case container.RestartPolicyDisabled:
		default:
			return false
		}
	case flagNetwork:
		c.Network = value
	case flagPublish:
		p, ok := parsePublish(value)
		if !ok {
			return false
		}
		c.Ports = append(c.Ports, p)
	case flagEnv:
		k, v, _ := strings.Cut(value, "=")
		c.EnvVars = append(c.EnvVars, KeyValue{Key: k, Value: v})
	case flagLabel:
		k, v, _ := strings.Cut(value, "=")
		c.Labels = append(c.Labels, KeyValue{Key: k, Value: v})
	case flagVolume:
		v, ok := parseVolume(value)
		if !ok {
			return false
		}
		c.Volumes = append(c.Volumes, v)
	case flagAddHost:
		host, ip, ok := strings.Cut(value, ":")
		if !ok || host == "" || ip == "" {
			return false
		}
		c.AddHosts = append(c.AddHosts, AddHost{Host: host, IP: ip})
	}
	return true
}

// parsePublish handles [host:]container[/proto]. Specs bound to a host IP or
// covering a port range do not fit a Port and are rejected.
func parsePublish(spec string) (Port, bool) {
	mappings, err := nat.ParsePortSpec(spec)
	if err != nil || len(mappings) != 1 {
		return Port{}, false
	}
	m := mappings[0]
	if m.Binding.HostIP != "" {
		return Port{}, false
	}

	p := Port{Container: IntPtr(m.Port.Int())}
	if m.Binding.HostPort != "" {
		host, err := strconv.Atoi(m.Binding.HostPort)
		if err != nil {
			return Port{}, false
		}
		p.Host = IntPtr(host)
	}
	if strings.Contains(spec, "/") {
		proto := Protocol(m.Port.Proto())
		if !validProtocol(proto) {
			return Port{}, false
		}
		p.Protocol = proto
	}
	return p, true
}

func parseVolume(spec string) (Volume, bool) {
	parts := strings.Split(spec, ":")
	switch len(parts) {
	case 2:
		return Volume{Host: parts[0], Container: parts[1]}, parts[0] != "" && parts[1] != ""
	case 3:
		mode := VolumeMode(parts[2])
		if !validVolumeMode(mode) || parts[0] == "" || parts[1] == "" {
			return Volume{}, false
		}
		return Volume{Host: parts[0], Container: parts[1], Mode: mode}, true
	}
	return Volume{}, false
}

// splitImageRef separates a trailing :tag from the repository. A colon
// before the last slash belongs to a registry host and is not a tag.
func splitImageRef(ref string) (image, tag string) {
	colon := strings.LastIndex(ref, ":")
	if colon > strings.LastIndex(ref, "/") {
		return ref[:colon], ref[colon+1:]
	}
	return ref, DefaultTag
}
