package dockerrun

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const (
	msgRequired    = "is required"
	msgEmpty       = "must not be empty"
	msgString      = "must be a string"
	msgObject      = "must be an object"
	msgArray       = "must be an array"
	msgNonNegInt   = "must be a non-negative integer"
	msgRestartEnum = "must be one of always, unless-stopped, on-failure"
	msgProtoEnum   = "must be one of tcp, udp"
	msgModeEnum    = "must be one of ro, rw"
)

// portValue accepts an integer within int32 range or a blank string, which
// stands for a port the form left empty.
const portValue = `{"type": ["integer", "string", "null"], "minimum": 0, "maximum": 2147483647, "pattern": "^\\s*$"}`

const optString = `{"type": ["string", "null"]}`

// configSchema holds every type, enum and range rule for a loosely typed
// record. Rows missing their container port are allowed here and dropped
// when tokens are built.
var configSchema = mustSchema(`{
	"type": "object",
	"required": ["name", "image"],
	"properties": {
		"name": {"type": "string", "pattern": "\\S"},
		"image": {"type": "string", "pattern": "\\S"},
		"tag": ` + optString + `,
		"network": ` + optString + `,
		"extraArgs": ` + optString + `,
		"restartPolicy": {"type": ["string", "null"], "enum": ["always", "unless-stopped", "on-failure", "", null]},
		"ports": {"type": ["array", "null"], "items": {
			"type": "object",
			"properties": {
				"container": ` + portValue + `,
				"containerPort": ` + portValue + `,
				"host": ` + portValue + `,
				"hostPort": ` + portValue + `,
				"protocol": {"type": ["string", "null"], "enum": ["tcp", "udp", "", null]}
			}
		}},
		"envVars": {"$ref": "#/definitions/keyValues"},
		"labels": {"$ref": "#/definitions/keyValues"},
		"addHosts": {"type": ["array", "null"], "items": {
			"type": "object",
			"properties": {"host": ` + optString + `, "ip": ` + optString + `}
		}},
		"volumes": {"type": ["array", "null"], "items": {
			"type": "object",
			"properties": {
				"host": ` + optString + `,
				"container": ` + optString + `,
				"mode": {"type": ["string", "null"], "enum": ["ro", "rw", "", null]}
			}
		}}
	},
	"definitions": {
		"keyValues": {"type": ["array", "null"], "items": {
			"type": "object",
			"properties": {"key": ` + optString + `, "value": ` + optString + `}
		}}
	}
}`)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("dockerrun: invalid config schema: %v", err))
	}
	return s
}

// ValidateJSON decodes data and validates the result. Numbers are decoded
// without float rounding so large or fractional ports are reported exactly.
func ValidateJSON(data []byte) (Config, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Config{}, &ValidationError{Fields: map[string]string{RootField: "must be valid JSON: " + err.Error()}}
	}
	return Validate(raw)
}

// Validate accepts a loosely typed configuration (the result of decoding
// JSON or YAML into `any`, or a Config value) and returns the normalized
// record. On failure the error is a *ValidationError listing every problem.
//
// Incomplete sequence rows (a port without a container port, an env var
// with a blank key, ...) are kept here and dropped at token building.
func Validate(raw any) (Config, error) {
	switch v := raw.(type) {
	case Config:
		return ValidateConfig(v)
	case *Config:
		if v != nil {
			return ValidateConfig(*v)
		}
	}

	data, err := json.Marshal(stringKeys(raw))
	if err != nil {
		return Config{}, &ValidationError{Fields: map[string]string{RootField: "must be JSON compatible: " + err.Error()}}
	}

	result, err := configSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Config{}, &ValidationError{Fields: map[string]string{RootField: "must be valid JSON: " + err.Error()}}
	}
	if !result.Valid() {
		verr := &ValidationError{}
		for _, re := range result.Errors() {
			path := fieldPath(re)
			verr.add(path, messageFor(path, re))
		}
		return Config{}, verr
	}

	var doc document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return Config{}, &ValidationError{Fields: map[string]string{RootField: msgObject}}
	}
	return doc.config(), nil
}

// ValidateConfig applies the same rules as Validate to an already typed
// record: required fields, tag defaulting, enum membership and port ranges.
func ValidateConfig(c Config) (Config, error) {
	verr := &ValidationError{}
	cfg := c.Clone()

	cfg.Name = strings.TrimSpace(cfg.Name)
	if cfg.Name == "" {
		verr.add("name", msgEmpty)
	}
	cfg.Image = strings.TrimSpace(cfg.Image)
	if cfg.Image == "" {
		verr.add("image", msgEmpty)
	}
	cfg.Tag = strings.TrimSpace(cfg.Tag)
	if cfg.Tag == "" {
		cfg.Tag = DefaultTag
	}
	cfg.Network = strings.TrimSpace(cfg.Network)

	if cfg.RestartPolicy != "" && !validRestartPolicy(cfg.RestartPolicy) {
		verr.add("restartPolicy", msgRestartEnum)
	}
	for i, p := range cfg.Ports {
		path := fmt.Sprintf("ports[%d]", i)
		if p.Host != nil && *p.Host < 0 {
			verr.add(path+".host", msgNonNegInt)
		}
		if p.Container != nil && *p.Container < 0 {
			verr.add(path+".container", msgNonNegInt)
		}
		if p.Protocol != "" && !validProtocol(p.Protocol) {
			verr.add(path+".protocol", msgProtoEnum)
		}
	}
	for i, v := range cfg.Volumes {
		if v.Mode != "" && !validVolumeMode(v.Mode) {
			verr.add(fmt.Sprintf("volumes[%d].mode", i), msgModeEnum)
		}
	}

	if !verr.empty() {
		return Config{}, verr
	}
	return cfg, nil
}

// document is the shape of a record that passed configSchema.
type document struct {
	Name          string       `json:"name"`
	Image         string       `json:"image"`
	Tag           string       `json:"tag"`
	Network       string       `json:"network"`
	ExtraArgs     string       `json:"extraArgs"`
	RestartPolicy string       `json:"restartPolicy"`
	Ports         []portRecord `json:"ports"`
	EnvVars       []KeyValue   `json:"envVars"`
	Labels        []KeyValue   `json:"labels"`
	AddHosts      []AddHost    `json:"addHosts"`
	Volumes       []Volume     `json:"volumes"`
}

type portRecord struct {
	Container     any    `json:"container"`
	ContainerPort any    `json:"containerPort"`
	Host          any    `json:"host"`
	HostPort      any    `json:"hostPort"`
	Protocol      string `json:"protocol"`
}

// config trims the free-text fields and defaults the tag. Env and label
// values and extra args keep their whitespace.
func (d document) config() Config {
	cfg := Config{
		Name:          strings.TrimSpace(d.Name),
		Image:         strings.TrimSpace(d.Image),
		Tag:           strings.TrimSpace(d.Tag),
		Network:       strings.TrimSpace(d.Network),
		ExtraArgs:     d.ExtraArgs,
		RestartPolicy: RestartPolicy(d.RestartPolicy),
		EnvVars:       d.EnvVars,
		Labels:        d.Labels,
	}
	if cfg.Tag == "" {
		cfg.Tag = DefaultTag
	}

	if d.Ports != nil {
		cfg.Ports = make([]Port, 0, len(d.Ports))
		for _, p := range d.Ports {
			cfg.Ports = append(cfg.Ports, Port{
				Container: portNumber(p.Container, p.ContainerPort),
				Host:      portNumber(p.Host, p.HostPort),
				Protocol:  Protocol(p.Protocol),
			})
		}
	}
	if d.AddHosts != nil {
		cfg.AddHosts = make([]AddHost, 0, len(d.AddHosts))
		for _, h := range d.AddHosts {
			cfg.AddHosts = append(cfg.AddHosts, AddHost{
				Host: strings.TrimSpace(h.Host),
				IP:   strings.TrimSpace(h.IP),
			})
		}
	}
	if d.Volumes != nil {
		cfg.Volumes = make([]Volume, 0, len(d.Volumes))
		for _, v := range d.Volumes {
			cfg.Volumes = append(cfg.Volumes, Volume{
				Host:      strings.TrimSpace(v.Host),
				Container: strings.TrimSpace(v.Container),
				Mode:      v.Mode,
			})
		}
	}
	return cfg
}

// portNumber returns the first of the given values that holds a number.
// Blank strings count as absent, so an empty primary key falls back to its
// alias.
func portNumber(values ...any) *int {
	for _, v := range values {
		num, ok := v.(json.Number)
		if !ok {
			continue
		}
		if n, err := num.Int64(); err == nil {
			return IntPtr(int(n))
		}
		// Integral values written with a fraction or exponent, e.g. 80.0.
		if f, err := num.Float64(); err == nil {
			return IntPtr(int(f))
		}
	}
	return nil
}

// stringKeys converts YAML mappings with non-string keys into objects that
// can be encoded as JSON.
func stringKeys(v any) any {
	switch x := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = stringKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = stringKeys(val)
		}
		return out
	}
	return v
}

// fieldPath turns a schema error context such as "(root).ports.1.container"
// into "ports[1].container".
func fieldPath(re gojsonschema.ResultError) string {
	segments := strings.Split(re.Context().String(), ".")[1:]
	if re.Type() == "required" {
		if prop, ok := re.Details()["property"].(string); ok {
			if len(segments) == 0 || segments[len(segments)-1] != prop {
				segments = append(segments, prop)
			}
		}
	}

	var b strings.Builder
	for _, s := range segments {
		if _, err := strconv.Atoi(s); err == nil {
			b.WriteString("[" + s + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s)
	}
	if b.Len() == 0 {
		return RootField
	}
	return b.String()
}

func messageFor(path string, re gojsonschema.ResultError) string {
	leaf := path
	if i := strings.LastIndex(path, "."); i >= 0 {
		leaf = path[i+1:]
	}

	switch leaf {
	case "container", "containerPort", "host", "hostPort":
		if strings.HasPrefix(path, "ports[") {
			return msgNonNegInt
		}
	}

	switch re.Type() {
	case "required":
		return msgRequired
	case "invalid_type":
		expected := fmt.Sprint(re.Details()["expected"])
		switch {
		case re.Details()["given"] == "null" && (leaf == "name" || leaf == "image"):
			return msgRequired
		case strings.Contains(expected, "object"):
			return msgObject
		case strings.Contains(expected, "array"):
			return msgArray
		}
		return msgString
	case "pattern":
		return msgEmpty
	case "enum":
		switch leaf {
		case "restartPolicy":
			return msgRestartEnum
		case "protocol":
			return msgProtoEnum
		case "mode":
			return msgModeEnum
		}
	}
	return re.Description()
}
