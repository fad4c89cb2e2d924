package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vulncomics/internal/apperr"
	"vulncomics/internal/types"
)

func TestParsePackageJSONKeepsOrder(t *testing.T) {
	src := `{
  "name": "demo",
  "dependencies": {"zod": "^3.0.0", "left-pad": "1.3.0", "axios": "0.21.0"},
  "devDependencies": {"jest": "29.0.0", "weird": {"git": "x"}}
}`
	got, err := Parse([]byte(src), "package.json", 0)
	require.NoError(t, err)
	assert.Equal(t, types.EcosystemNPM, got.Ecosystem)
	assert.Equal(t, "package.json", got.Filename)

	names := make([]string, 0, len(got.Packages))
	for _, p := range got.Packages {
		names = append(names, p.Name)
		assert.Equal(t, types.EcosystemNPM, p.Ecosystem)
	}
	assert.Equal(t, []string{"zod", "left-pad", "axios", "jest"}, names)
	assert.Equal(t, "^3.0.0", got.Packages[0].Version)
	assert.Equal(t, []string{"Skipping 'weird': version is not a string"}, got.ParseErrors)
}

func TestParsePackageJSONSectionNotObject(t *testing.T) {
	got, err := Parse([]byte(`{"dependencies": ["a"], "devDependencies": {"b": "1.0.0"}}`), "app.json", 0)
	require.NoError(t, err)
	require.Len(t, got.Packages, 1)
	assert.Equal(t, "b", got.Packages[0].Name)
	assert.Contains(t, got.ParseErrors[0], "'dependencies' field is not an object")
}

func TestParsePackageJSONDuplicateKeyKeepsLastValue(t *testing.T) {
	src := `{"dependencies": {"lodash": "4.17.0", "axios": "0.21.0", "lodash": "4.17.21"}}`
	got, err := Parse([]byte(src), "package.json", 0)
	require.NoError(t, err)
	require.Len(t, got.Packages, 2)
	assert.Equal(t, "lodash", got.Packages[0].Name)
	assert.Equal(t, "4.17.21", got.Packages[0].Version)
	assert.Equal(t, "axios", got.Packages[1].Name)
}

func TestParsePackageJSONKeepsVersionVerbatim(t *testing.T) {
	got, err := Parse([]byte(`{"dependencies": {"zod": " ^3.0.0 "}}`), "package.json", 0)
	require.NoError(t, err)
	require.Len(t, got.Packages, 1)
	assert.Equal(t, " ^3.0.0 ", got.Packages[0].Version)
}

func TestParseLeftPadManifest(t *testing.T) {
	got, err := Parse([]byte(`{"dependencies": {"left-pad": "1.3.0"}}`), "package.json", 0)
	require.NoError(t, err)
	assert.Equal(t, []types.Package{{Name: "left-pad", Version: "1.3.0", Ecosystem: types.EcosystemNPM}}, got.Packages)
	assert.Empty(t, got.ParseErrors)
}

func TestParseRejections(t *testing.T) {
	cases := []struct {
		name     string
		content  []byte
		filename string
		max      int64
		code     apperr.Code
	}{
		{"unsupported extension", []byte("x"), "Cargo.lock", 0, apperr.CodeInvalidFileType},
		{"too large", []byte(strings.Repeat("a", 11)), "package.json", 10, apperr.CodeFileTooLarge},
		{"invalid json", []byte(`{"dependencies": `), "package.json", 0, apperr.CodeParseError},
		{"not an object", []byte(`[1,2]`), "package.json", 0, apperr.CodeParseError},
		{"trailing data", []byte(`{} {}`), "package.json", 0, apperr.CodeParseError},
		{"not utf8", []byte{'{', 0xff, 0xfe, '}'}, "package.json", 0, apperr.CodeParseError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.content, tc.filename, tc.max)
			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func TestParseRequirements(t *testing.T) {
	src := strings.Join([]string{
		"# pinned deps",
		"-r base.txt",
		"--index-url https://pypi.example/simple",
		"requests==2.19.0",
		"Django>=3.2,<4  # lts",
		"uvicorn[standard]~=0.23.0",
		"urllib3===1.26.5",
		"numpy",
		"flask<2.0",
		"pyyaml==5.*",
		`pywin32==306; sys_platform == "win32"`,
		"",
	}, "\n")
	got, err := Parse([]byte(src), "requirements-dev.txt", 0)
	require.NoError(t, err)
	assert.Equal(t, types.EcosystemPyPI, got.Ecosystem)
	assert.Equal(t, []types.Package{
		{Name: "requests", Version: "2.19.0", Ecosystem: types.EcosystemPyPI},
		{Name: "Django", Version: "3.2", Ecosystem: types.EcosystemPyPI},
		{Name: "uvicorn", Version: "0.23.0", Ecosystem: types.EcosystemPyPI},
		{Name: "urllib3", Version: "1.26.5", Ecosystem: types.EcosystemPyPI},
		{Name: "pywin32", Version: "306", Ecosystem: types.EcosystemPyPI},
	}, got.Packages)
	assert.Len(t, got.ParseErrors, 3)
}

func TestParserFor(t *testing.T) {
	for _, name := range []string{"package.json", "frontend/package.json", "my-package.json", "FIXTURE.JSON"} {
		p, err := ParserFor(name)
		require.NoError(t, err, name)
		assert.Equal(t, types.EcosystemNPM, p.Ecosystem())
	}
	p, err := ParserFor("requirements.txt")
	require.NoError(t, err)
	assert.Equal(t, types.EcosystemPyPI, p.Ecosystem())

	_, err = ParserFor("notes.txt")
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidFileType))
}
