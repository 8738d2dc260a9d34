package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemaforge/schemaforge/compiler/gen"
)

func TestBuildTargets(t *testing.T) {
	cfg, err := gen.NewConfig(gen.WithBasePackage("com.example.shop"))
	require.NoError(t, err)

	targetNames = []string{"java", "python", "ts", "go"}
	defer func() { targetNames = []string{"java"} }()

	targets, err := buildTargets(cfg)
	require.NoError(t, err)
	require.Len(t, targets, 4)
	assert.Equal(t, "java", targets[0].Name())
	assert.Equal(t, "python", targets[1].Name())
	assert.Equal(t, "typescript", targets[2].Name())
	assert.Equal(t, "golang", targets[3].Name())

	targetNames = []string{"cobol"}
	_, err = buildTargets(cfg)
	assert.Error(t, err)
}

func TestTableList(t *testing.T) {
	tables = ""
	assert.Nil(t, tableList())

	tables = "products, categories ,tags"
	defer func() { tables = "" }()
	assert.Equal(t, []string{"products", "categories", "tags"}, tableList())
}
