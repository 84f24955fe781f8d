// Package dockerrun turns a container configuration record into the text of
// an equivalent `docker run` invocation and back.
//
// The package is pure: Validate, BuildTokens and Render perform no I/O and
// keep no mutable state, so they are safe to call from any goroutine. Loose
// input is checked against a JSON schema compiled once at package init.
package dockerrun

// DefaultTag is used when a record carries no tag.
const DefaultTag = "latest"

// RestartPolicy is the value passed to --restart.
type RestartPolicy string

const (
	RestartAlways        RestartPolicy = "always"
	RestartUnlessStopped RestartPolicy = "unless-stopped"
	RestartOnFailure     RestartPolicy = "on-failure"
)

// Protocol is the optional transport suffix of a published port.
type Protocol string

const (
	ProtocolTCP Protocol = "tcp"
	ProtocolUDP Protocol = "udp"
)

// VolumeMode is the optional access-mode suffix of a bind mount.
type VolumeMode string

const (
	VolumeReadOnly  VolumeMode = "ro"
	VolumeReadWrite VolumeMode = "rw"
)

// Config is the validated, canonical form of a container configuration.
type Config struct {
	Name          string        `json:"name" yaml:"name"`
	Image         string        `json:"image" yaml:"image"`
	Tag           string        `json:"tag" yaml:"tag"`
	RestartPolicy RestartPolicy `json:"restartPolicy,omitempty" yaml:"restartPolicy,omitempty"`
	Network       string        `json:"network,omitempty" yaml:"network,omitempty"`
	Ports         []Port        `json:"ports" yaml:"ports,omitempty"`
	EnvVars       []KeyValue    `json:"envVars" yaml:"envVars,omitempty"`
	Labels        []KeyValue    `json:"labels" yaml:"labels,omitempty"`
	AddHosts      []AddHost     `json:"addHosts" yaml:"addHosts,omitempty"`
	Volumes       []Volume      `json:"volumes" yaml:"volumes,omitempty"`
	ExtraArgs     string        `json:"extraArgs,omitempty" yaml:"extraArgs,omitempty"`
}

// Port publishes a container port. Host is nil for an ephemeral host port;
// a nil Container marks an incomplete row that is never rendered.
type Port struct {
	Host      *int     `json:"host,omitempty" yaml:"host,omitempty"`
	Container *int     `json:"container,omitempty" yaml:"container,omitempty"`
	Protocol  Protocol `json:"protocol,omitempty" yaml:"protocol,omitempty"`
}

// KeyValue is an environment variable or a label.
type KeyValue struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// AddHost is a custom host-to-IP mapping.
type AddHost struct {
	Host string `json:"host" yaml:"host"`
	IP   string `json:"ip" yaml:"ip"`
}

// Volume is a bind mount.
type Volume struct {
	Host      string     `json:"host" yaml:"host"`
	Container string     `json:"container" yaml:"container"`
	Mode      VolumeMode `json:"mode,omitempty" yaml:"mode,omitempty"`
}

// IntPtr returns a pointer to n. Handy when building ports by hand.
func IntPtr(n int) *int {
	return &n
}

// ImageRef returns the terminal positional argument, <image>:<tag>.
func (c Config) ImageRef() string {
	tag := c.Tag
	if isBlank(tag) {
		tag = DefaultTag
	}
	return c.Image + ":" + tag
}

// Clone returns a deep copy so callers can rename or edit a record without
// touching the original slices.
func (c Config) Clone() Config {
	out := c
	if c.Ports != nil {
		out.Ports = make([]Port, len(c.Ports))
		for i, p := range c.Ports {
			cp := Port{Protocol: p.Protocol}
			if p.Host != nil {
				cp.Host = IntPtr(*p.Host)
			}
			if p.Container != nil {
				cp.Container = IntPtr(*p.Container)
			}
			out.Ports[i] = cp
		}
	}
	out.EnvVars = append([]KeyValue(nil), c.EnvVars...)
	out.Labels = append([]KeyValue(nil), c.Labels...)
	out.AddHosts = append([]AddHost(nil), c.AddHosts...)
	out.Volumes = append([]Volume(nil), c.Volumes...)
	return out
}

func validRestartPolicy(p RestartPolicy) bool {
	switch p {
	case RestartAlways, RestartUnlessStopped, RestartOnFailure:
		return true
	}
	return false
}

func validProtocol(p Protocol) bool {
	return p == ProtocolTCP || p == ProtocolUDP
}

func validVolumeMode(m VolumeMode) bool {
	return m == VolumeReadOnly || m == VolumeReadWrite
}
