package e2e

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/openapi2sdk/internal/cli"
)

const openAPISpec = "" +
	"openapi: 3.0.0\n" +
	"info:\n" +
	"  title: E2E Sample\n" +
	"  version: '1.0.0'\n" +
	"components:\n" +
	"  securitySchemes:\n" +
	"    apiKeyAuth: {type: apiKey, in: header, name: Authorization}\n" +
	"security:\n" +
	"  - apiKeyAuth: []\n" +
	"paths:\n" +
	"  /pets:\n" +
	"    get:\n" +
	"      operationId: listPets\n" +
	"      summary: List pets\n" +
	"      tags: [read]\n" +
	"      parameters:\n" +
	"        - {name: limit, in: query, schema: {type: integer}}\n" +
	"        - {name: kind, in: query, required: true, schema: {type: string}}\n" +
	"      responses:\n" +
	"        '200':\n" +
	"          description: ok\n" +
	"          content:\n" +
	"            application/json:\n" +
	"              schema:\n" +
	"                type: array\n" +
	"                items:\n" +
	"                  type: string\n"

const swaggerSpec = "" +
	"swagger: '2.0'\n" +
	"info:\n" +
	"  title: E2E Sample\n" +
	"  version: '1.0.0'\n" +
	"securityDefinitions:\n" +
	"  apiKeyAuth: {type: apiKey, in: header, name: Authorization}\n" +
	"security:\n" +
	"  - apiKeyAuth: []\n" +
	"paths:\n" +
	"  /pets:\n" +
	"    get:\n" +
	"      operationId: listPets\n" +
	"      summary: List pets\n" +
	"      tags: [read]\n" +
	"      produces: [application/json]\n" +
	"      parameters:\n" +
	"        - {name: limit, in: query, type: integer}\n" +
	"        - {name: kind, in: query, required: true, type: string}\n" +
	"      responses:\n" +
	"        '200':\n" +
	"          description: ok\n" +
	"          schema:\n" +
	"            type: array\n" +
	"            items:\n" +
	"              type: string\n"

var languages = []string{"python", "typescript", "javascript", "go"}

func writeTempSpec(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "spec.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := cli.NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	require.NoError(t, root.Execute(), "cli execute %v", args)
	return out.String()
}

func digestDir(t *testing.T, dir string) (files []string, sum string) {
	t.Helper()
	h := sha256.New()
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	sort.Strings(files)
	for _, rel := range files {
		b, err := os.ReadFile(filepath.Join(dir, rel))
		require.NoError(t, err)
		_, _ = h.Write([]byte(rel))
		_, _ = h.Write(b)
	}
	return files, hex.EncodeToString(h.Sum(nil))
}

func TestE2E_Generate_Deterministic(t *testing.T) {
	t.Parallel()
	spec := writeTempSpec(t, openAPISpec)
	dir1 := t.TempDir()
	dir2 := t.TempDir()

	langs := "python,typescript,javascript,go"
	runCLI(t, "generate", "--input", spec, "--lang", langs, "--out", dir1, "--force")
	runCLI(t, "generate", "--input", spec, "--lang", langs, "--out", dir2, "--force")

	files1, sum1 := digestDir(t, dir1)
	files2, sum2 := digestDir(t, dir2)
	assert.Equal(t, []string{"client.go", "client.js", "client.py", "client.ts"}, files1)
	assert.Equal(t, files1, files2)
	assert.Equal(t, sum1, sum2, "generated outputs differ between runs")
}

func TestE2E_RequiredFirstAndCredential(t *testing.T) {
	t.Parallel()
	spec := writeTempSpec(t, openAPISpec)

	want := map[string][]string{
		"python": {
			"def __init__(self, base_url: str, api_key: str) -> None:",
			"def listPets(self, kind: str, limit: int = None) -> List[str]:",
			`headers["Authorization"] = f"Bearer {self._api_key}"`,
		},
		"typescript": {
			"constructor(baseUrl: string, apiKey: string) {",
			"async listPets(kind: string, limit?: number): Promise<string[]> {",
		},
		"javascript": {
			"constructor(baseUrl, apiKey) {",
			"async listPets(kind, limit) {",
		},
		"go": {
			"func NewE2ESampleClient(baseURL string, apiKey string) *E2ESampleClient {",
			"func (c *E2ESampleClient) ListPets(ctx context.Context, kind string, limit *int64) ([]string, error) {",
		},
	}
	for _, lang := range languages {
		code := runCLI(t, "generate", "--input", spec, "--lang", lang)
		for _, line := range want[lang] {
			assert.Contains(t, code, line, lang)
		}
	}
}

// Swagger 2.0 input converts to the same client as its OpenAPI 3 twin.
func TestE2E_SwaggerMatchesOpenAPI(t *testing.T) {
	t.Parallel()
	v3 := writeTempSpec(t, openAPISpec)
	v2 := writeTempSpec(t, swaggerSpec)

	methodLine := regexp.MustCompile(`(?m)^.*listPets.*$`)
	for _, lang := range languages {
		fromV3 := runCLI(t, "generate", "--input", v3, "--lang", lang)
		fromV2 := runCLI(t, "generate", "--input", v2, "--lang", lang)
		assert.Equal(t, methodLine.FindAllString(fromV3, -1), methodLine.FindAllString(fromV2, -1), lang)
	}
}

// Compiles the generated Go client when a toolchain is available.
func TestE2E_GoClientBuilds(t *testing.T) {
	if os.Getenv("OPENAPI2SDK_E2E_ONLINE") != "1" || !haveCmd("go") {
		t.Skip("set OPENAPI2SDK_E2E_ONLINE=1 with a Go toolchain on PATH to build the generated client")
	}
	dir := t.TempDir()
	runCLI(t, "generate", "--input", writeTempSpec(t, openAPISpec), "--lang", "go", "--out", filepath.Join(dir, "client.go"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/e2esample\n\ngo 1.22\n"), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	cmd := exec.CommandContext(ctx, "go", "vet", "./...")
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

func haveCmd(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
