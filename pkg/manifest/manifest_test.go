package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvus-crawler/corvus/pkg/persist"
)

const validYAML = `
name: nightly-news
request:
  url: "http://example.com/articles/{{id}}"
  method: post
  headers:
    User-Agent: corvus
  vars:
    - id: ["[1..3]"]
  params:
    - offset: 0
      limit: [100, 200]
  encoding:
    output: utf-8
  timeout_seconds: 5
  max_retry: 2
  sleep_seconds: 1
notify:
  - slack:
      url: https://hooks.slack.com/services/x
      channel: "#crawler"
      mention: "<!here>"
      level: warn
output:
  - local_file:
      path: "out/%Y%m%d/{{id}}.html"
  - amazon_s3:
      region: ap-northeast-1
      bucket: corvus-archive
      key: "news/%Y%m%d/{{id}}.html"
max_threads: 4
rate_limit: 2.5
log:
  file:
    path: corvus.log
  elasticsearch:
    endpoint: http://localhost:9200
`

func TestLoadFromBytesYAML(t *testing.T) {
	m, err := LoadFromBytes([]byte(validYAML), "run.yaml")
	require.NoError(t, err)

	assert.Equal(t, "nightly-news", m.Name)
	assert.Equal(t, "post", m.Request.Method)
	assert.Equal(t, 5, m.Request.TimeoutSeconds)
	assert.Equal(t, 2, m.Request.MaxRetry)
	require.Len(t, m.Request.Vars, 1)
	assert.Equal(t, StringList{"[1..3]"}, m.Request.Vars[0]["id"])
	require.Len(t, m.Request.Params, 1)
	assert.Equal(t, StringList{"0"}, m.Request.Params[0]["offset"])
	assert.Equal(t, StringList{"100", "200"}, m.Request.Params[0]["limit"])
	assert.Equal(t, 4, m.MaxThreads)
	assert.Equal(t, 2.5, m.RateLimit)
	assert.Equal(t, "http://localhost:9200", m.Log.Elasticsearch.Endpoint)

	// The scalar input charset defaults in when encoding is present.
	assert.Equal(t, "utf-8", m.Request.Encoding.Input)

	methods := m.Methods()
	require.Len(t, methods, 2)
	assert.Equal(t, persist.KindLocalFile, methods[0].Kind)
	assert.Equal(t, "out/%Y%m%d/{{id}}.html", methods[0].Path)
	assert.Equal(t, persist.KindAmazonS3, methods[1].Kind)
	assert.Equal(t, "corvus-archive", methods[1].Bucket)
}

func TestLoadFromBytesJSON(t *testing.T) {
	data := []byte(`{
		"name": "j",
		"request": {"url": "http://t/{{id}}", "vars": [{"id": [1, 2]}]},
		"output": [{"local_file": {"path": "out.html"}}]
	}`)
	m, err := LoadFromBytes(data, "run.json")
	require.NoError(t, err)
	assert.Equal(t, StringList{"1", "2"}, m.Request.Vars[0]["id"])
	assert.Equal(t, DefaultMethod, m.Request.Method)
	assert.Equal(t, DefaultTimeoutSeconds, m.Request.TimeoutSeconds)
	assert.Equal(t, DefaultMaxThreads, m.MaxThreads)
}

func TestStringListScalarForms(t *testing.T) {
	var m Manifest
	data := []byte(`
name: x
request:
  url: http://t
  vars:
    - flag: true
      count: 7
output:
  - local_file:
      path: o
`)
	parsed, err := LoadFromBytes(data, "x.yml")
	require.NoError(t, err)
	m = *parsed
	assert.Equal(t, StringList{"true"}, m.Request.Vars[0]["flag"])
	assert.Equal(t, StringList{"7"}, m.Request.Vars[0]["count"])
}

func TestValidateCollectsAllErrors(t *testing.T) {
	m := &Manifest{
		Request: RequestConfig{
			TimeoutSeconds: 300,
			MaxRetry:       -1,
			Encoding:       &EncodingConfig{Output: "klingon"},
		},
		Notify:     []NotifyConfig{{}},
		Output:     []OutputConfig{{}},
		MaxThreads: 70000,
	}
	err := m.Validate()
	require.Error(t, err)

	verrs, ok := err.(ValidationErrors)
	require.True(t, ok)

	paths := make([]string, 0, len(verrs))
	for _, e := range verrs {
		paths = append(paths, e.Path)
	}
	assert.Contains(t, paths, "name")
	assert.Contains(t, paths, "request.url")
	assert.Contains(t, paths, "request.timeout_seconds")
	assert.Contains(t, paths, "request.max_retry")
	assert.Contains(t, paths, "request.encoding.output")
	assert.Contains(t, paths, "output[0]")
	assert.Contains(t, paths, "notify[0]")
	assert.Contains(t, paths, "max_threads")
}

func TestValidateAllowsUnsetTimeout(t *testing.T) {
	m := &Manifest{
		Name:    "t",
		Request: RequestConfig{URL: "http://t/"},
		Output:  []OutputConfig{{LocalFile: &LocalFileConfig{Path: "/tmp/out"}}},
	}
	require.NoError(t, m.Validate())
	m.ApplyDefaults()
	assert.Equal(t, DefaultTimeoutSeconds, m.Request.TimeoutSeconds)
}

func TestLoadRejectsEmpty(t *testing.T) {
	_, err := LoadFromBytes(nil, "run.yaml")
	assert.ErrorContains(t, err, "empty")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	assert.ErrorContains(t, err, "not found")
}
