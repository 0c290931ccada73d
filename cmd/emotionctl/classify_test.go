package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"EmotionLens/internal/inference"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type byteRunner struct{}

func (byteRunner) RunBytes(_ context.Context, data []byte) ([]inference.EmotionResult, error) {
	if string(data) == "bad" {
		return nil, errors.New("decode failed")
	}
	return []inference.EmotionResult{{Label: inference.Happy, Confidence: 0.9}}, nil
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestCollectImages(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"b.jpg":        "x",
		"a.PNG":        "x",
		"notes.txt":    "x",
		"nested/c.webp": "x",
	})

	paths, err := collectImages(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.PNG"),
		filepath.Join(dir, "b.jpg"),
		filepath.Join(dir, "nested/c.webp"),
	}, paths)

	single, err := collectImages(filepath.Join(dir, "b.jpg"))
	require.NoError(t, err)
	assert.Len(t, single, 1)

	_, err = collectImages(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"1.jpg": "ok", "2.jpg": "bad", "3.jpg": "ok", "4.jpg": "ok"})
	paths, err := collectImages(dir)
	require.NoError(t, err)

	var out bytes.Buffer
	failed, err := classify(context.Background(), byteRunner{}, paths, 3, &out, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	seen := map[string]classifyResult{}
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var r classifyResult
		require.NoError(t, jsoniter.Unmarshal(scanner.Bytes(), &r))
		seen[filepath.Base(r.Path)] = r
	}
	require.Len(t, seen, 4)
	assert.NotEmpty(t, seen["2.jpg"].Error)
	require.Len(t, seen["1.jpg"].Faces, 1)
	assert.Equal(t, inference.Happy, seen["1.jpg"].Faces[0].Label)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestClassifyStopsWritingOnError(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{}
	for i := 0; i < 20; i++ {
		files[fmt.Sprintf("%02d.jpg", i)] = "ok"
	}
	writeFiles(t, dir, files)
	paths, err := collectImages(dir)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := classify(context.Background(), byteRunner{}, paths, 2, failingWriter{}, nil)
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorContains(t, err, "disk full")
	case <-time.After(5 * time.Second):
		t.Fatal("classify did not return after a write error")
	}
}

func TestRunClassifyRejectsWorkers(t *testing.T) {
	err := runClassify(context.Background(), classifyOptions{Input: ".", Workers: 0}, &bytes.Buffer{})
	assert.Error(t, err)
}
