package dockerrun

import (
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func webConfig() Config {
	return Config{
		Name:          "web",
		Image:         "nginx",
		Tag:           "1.25",
		RestartPolicy: RestartAlways,
		Ports:         []Port{{Host: IntPtr(8080), Container: IntPtr(80)}},
		EnvVars:       []KeyValue{{Key: "ENV", Value: "prod"}},
	}
}

func TestRender_EndToEndCompact(t *testing.T) {
	cfg, err := Validate(map[string]any{
		"name":          "web",
		"image":         "nginx",
		"tag":           "1.25",
		"restartPolicy": "always",
		"ports":         []any{map[string]any{"container": float64(80), "host": float64(8080)}},
		"envVars":       []any{map[string]any{"key": "ENV", "value": "prod"}},
	})
	require.NoError(t, err)

	got := Render(cfg, Compact)
	assert.Equal(t, `docker run -d --name web --restart always -p 8080:80 -e "ENV=prod" nginx:1.25`, got)
}

func TestRender_DefaultTag(t *testing.T) {
	cfg, err := Validate(map[string]any{"name": "a", "image": "nginx"})
	require.NoError(t, err)

	assert.Contains(t, Render(cfg, Compact), "nginx:latest")
	assert.Equal(t, "docker run -d --name a nginx:latest", Render(cfg, Compact))
}

func TestRender_ImageRefFallsBackWhenTagBlank(t *testing.T) {
	cfg := Config{Name: "a", Image: "redis", Tag: "  "}
	assert.Equal(t, "docker run -d --name a redis:latest", Render(cfg, Compact))
}

func TestRender_FullOrder(t *testing.T) {
	cfg := Config{
		Name:          "api",
		Image:         "ghcr.io/acme/api",
		Tag:           "v2",
		RestartPolicy: RestartUnlessStopped,
		Network:       "prod",
		Ports: []Port{
			{Container: IntPtr(9000)},
			{Host: IntPtr(53), Container: IntPtr(53), Protocol: ProtocolUDP},
		},
		AddHosts:  []AddHost{{Host: "db", IP: "10.0.0.5"}},
		EnvVars:   []KeyValue{{Key: "A", Value: "1"}, {Key: "B"}},
		Labels:    []KeyValue{{Key: "team", Value: "core"}},
		Volumes:   []Volume{{Host: "/srv/data", Container: "/data", Mode: VolumeReadOnly}, {Host: "cache", Container: "/cache"}},
		ExtraArgs: "  --memory 512m\t--init ",
	}

	want := `docker run -d --name api --restart unless-stopped --network prod ` +
		`-p 9000 -p 53:53/udp --add-host=db:10.0.0.5 -e "A=1" -e "B=" --label team=core ` +
		`-v /srv/data:/data:ro -v cache:/cache --memory 512m --init ghcr.io/acme/api:v2`
	assert.Equal(t, want, Render(cfg, Compact))
}

func TestRender_Multiline(t *testing.T) {
	cfg := Config{
		Name:          "api",
		Image:         "nginx",
		Tag:           "latest",
		RestartPolicy: RestartAlways,
		Network:       "prod",
		Ports:         []Port{{Host: IntPtr(8080), Container: IntPtr(80)}},
		EnvVars:       []KeyValue{{Key: "ENV", Value: "prod"}},
		Labels:        []KeyValue{{Key: "note", Value: "hello world"}},
		ExtraArgs:     "--memory 512m --init",
	}

	want := strings.Join([]string{
		"docker run -d --name api \\",
		"  --restart always \\",
		"  --network prod \\",
		"  -p 8080:80 \\",
		"  -e \"ENV=prod\" \\",
		"  --label note=\"hello world\" \\",
		"  --memory 512m \\",
		"  --init \\",
		"  nginx:latest",
	}, "\n")
	assert.Equal(t, want, Render(cfg, Multiline))
}

func TestRender_MultilineMinimal(t *testing.T) {
	cfg := Config{Name: "a", Image: "nginx", Tag: "latest"}
	assert.Equal(t, "docker run -d --name a \\\n  nginx:latest", Render(cfg, Multiline))
}

func TestRender_MultilineMatchesCompact(t *testing.T) {
	cfgs := []Config{
		webConfig(),
		{Name: "x", Image: "busybox", Tag: "1", ExtraArgs: "-it --rm sh"},
		{
			Name:     "vols",
			Image:    "alpine",
			Tag:      "3",
			Volumes:  []Volume{{Host: "/my data", Container: "/data"}},
			Labels:   []KeyValue{{Key: "a", Value: "b c"}, {Key: "d", Value: "true"}},
			AddHosts: []AddHost{{Host: "h", IP: "::1"}},
		},
	}
	continuation := regexp.MustCompile(`\s*\\\n\s*`)
	for _, cfg := range cfgs {
		multi := continuation.ReplaceAllString(Render(cfg, Multiline), " ")
		assert.Equal(t, Render(cfg, Compact), multi, cfg.Name)
	}
}

func TestRender_LabelQuoting(t *testing.T) {
	cfg := Config{Name: "a", Image: "img", Tag: "latest", Labels: []KeyValue{
		{Key: "note", Value: "hello world"},
		{Key: "key", Value: "true"},
		{Key: "empty"},
	}}
	got := Render(cfg, Compact)
	assert.Contains(t, got, `--label note="hello world"`)
	assert.Contains(t, got, `--label key=true`)
	assert.Contains(t, got, `--label empty= `)
}

func TestRender_EnvAlwaysQuoted(t *testing.T) {
	cfg := Config{Name: "a", Image: "img", Tag: "latest", EnvVars: []KeyValue{
		{Key: "K", Value: "v"},
		{Key: "MSG", Value: `say "hi" now`},
	}}
	got := Render(cfg, Compact)
	assert.Contains(t, got, `-e "K=v"`)
	assert.Contains(t, got, `-e "MSG=say \"hi\" now"`)
}

func TestRender_GenericQuoting(t *testing.T) {
	cfg := Config{
		Name:    "my app",
		Image:   "img",
		Tag:     "latest",
		Network: "net",
		Volumes: []Volume{{Host: "/host path", Container: "/data"}},
	}
	got := Render(cfg, Compact)
	assert.Contains(t, got, `--name "my app"`)
	assert.Contains(t, got, `-v "/host path:/data"`)
	assert.Contains(t, got, `--network net`)
}

func TestRender_DropRule(t *testing.T) {
	cfg := Config{
		Name:     "a",
		Image:    "img",
		Tag:      "latest",
		Ports:    []Port{{Host: IntPtr(80)}, {Container: IntPtr(443)}},
		EnvVars:  []KeyValue{{Key: "", Value: "x"}, {Key: "  ", Value: "y"}},
		Labels:   []KeyValue{{Key: "", Value: "z"}},
		AddHosts: []AddHost{{Host: "h"}, {IP: "1.2.3.4"}},
		Volumes:  []Volume{{Host: "/a"}, {Container: "/b"}},
	}
	assert.Equal(t, "docker run -d --name a -p 443 img:latest", Render(cfg, Compact))
}

func TestRender_OrderPreservedWithinSections(t *testing.T) {
	cfg := Config{
		Name:    "a",
		Image:   "img",
		Tag:     "latest",
		Ports:   []Port{{Container: IntPtr(3)}, {Container: IntPtr(1)}, {Container: IntPtr(2)}},
		EnvVars: []KeyValue{{Key: "Z", Value: "1"}, {Key: "A", Value: "2"}},
	}
	got := Render(cfg, Compact)
	assert.Less(t, strings.Index(got, "-p 3"), strings.Index(got, "-p 1"))
	assert.Less(t, strings.Index(got, "-p 1"), strings.Index(got, "-p 2"))
	assert.Less(t, strings.Index(got, `"Z=1"`), strings.Index(got, `"A=2"`))
}

func TestRender_Deterministic(t *testing.T) {
	cfg := webConfig()
	first := Render(cfg, Multiline)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, first, Render(cfg, Multiline))
		}()
	}
	wg.Wait()
}

func TestRender_DoesNotMutateConfig(t *testing.T) {
	cfg := webConfig()
	before := cfg.Clone()
	_ = Render(cfg, Compact)
	_ = Render(cfg, Multiline)
	assert.Equal(t, before, cfg)
}

func TestBuildTokens_Sections(t *testing.T) {
	groups := BuildTokens(Config{
		Name:          "a",
		Image:         "img",
		RestartPolicy: RestartOnFailure,
		AddHosts:      []AddHost{{Host: "h", IP: "1.1.1.1"}},
		ExtraArgs:     "--rm",
	})
	require.Len(t, groups, 4)
	assert.Equal(t, SectionIdentity, groups[0].Section)
	assert.Equal(t, SectionMisc, groups[1].Section)
	assert.Equal(t, SectionAddHosts, groups[2].Section)
	assert.Len(t, groups[2].Tokens, 1)
	assert.Equal(t, SectionExtra, groups[3].Section)
	assert.True(t, groups[3].Tokens[0].Verbatim)
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"", ""},
		{"a b", `"a b"`},
		{"tab\there", "\"tab\there\""},
		{`say "x" now`, `"say \"x\" now"`},
		{`no"space`, `no"space`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Quote(tt.in), tt.in)
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("MULTILINE")
	require.NoError(t, err)
	assert.Equal(t, Multiline, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, Compact, m)

	_, err = ParseMode("pretty")
	assert.Error(t, err)
}
