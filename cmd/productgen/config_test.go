package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/flarexio/productgen"
	"github.com/flarexio/productgen/llm"
	"github.com/flarexio/productgen/vector"
)

func TestLoadConfigMissingFile(t *testing.T) {
	assert := assert.New(t)

	path := t.TempDir()

	cfg, err := LoadConfig(path)
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal(productgen.DefaultCount, cfg.Generator.Count)
	assert.Equal(vector.DriverChromem, cfg.Vector.Driver)
	assert.True(cfg.Vector.Persistent)
	assert.Equal(filepath.Join(path, "vectors"), cfg.Vector.Path)
	assert.Equal(0.1, cfg.HTTP.GenerateRate)
}

func TestLoadConfig(t *testing.T) {
	assert := assert.New(t)

	path := t.TempDir()
	t.Setenv("WEAVIATE_API_KEY", "secret")

	content := `
llm:
  mode: remote
  remote:
    model: deepseek-reasoner
vector:
  driver: weaviate
  url: http://localhost:8080
  collection: SkincareProducts
generator:
  count: 20
  timeout: 90s
http:
  generateRate: 2
  generateBurst: 4
`

	if err := os.WriteFile(filepath.Join(path, "config.yaml"), []byte(content), 0644); err != nil {
		assert.Fail(err.Error())
		return
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal(llm.ModeRemote, cfg.LLM.Mode)
	assert.Equal("deepseek-reasoner", cfg.LLM.Remote.Model)
	assert.Equal(vector.DriverWeaviate, cfg.Vector.Driver)
	assert.Equal("secret", cfg.Vector.APIKey)
	assert.Empty(cfg.Vector.Path)
	assert.Equal(20, cfg.Generator.Count)
	assert.Equal(90*time.Second, cfg.Generator.Timeout.Duration())
	assert.Equal(productgen.DefaultOutput, cfg.Generator.Output)
	assert.Equal(2.0, cfg.HTTP.GenerateRate)
	assert.Equal(4, cfg.HTTP.GenerateBurst)
	assert.Equal(path, cfg.Path)
}

func TestOpener(t *testing.T) {
	assert := assert.New(t)

	_, err := Opener(vector.DriverChromem)
	assert.NoError(err)

	_, err = Opener(vector.DriverWeaviate)
	assert.NoError(err)

	_, err = Opener("pinecone")
	assert.ErrorIs(err, vector.ErrUnsupportedDriver)
}
