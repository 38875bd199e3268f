package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"memscan/process"
	"memscan/process_blob"
	"memscan/scan_variant"
	"memscan/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// fixture saves a two region snapshot:
//
//	0x1000 rw-p  int32 7, int32 hp, pointer 0x2000
//	0x2000 r--p  8 zero bytes, int32 555, int32 100
func fixture(t *testing.T, hp int32) string {
	t.Helper()

	s := process_blob.New()

	root := make([]byte, 16)
	binary.LittleEndian.PutUint32(root[0:], 7)
	binary.LittleEndian.PutUint32(root[4:], uint32(hp))
	binary.LittleEndian.PutUint64(root[8:], 0x2000)
	require.NoError(t, s.AddRegion(0x1000, "rw-p", "", root))

	child := make([]byte, 16)
	binary.LittleEndian.PutUint32(child[8:], 555)
	binary.LittleEndian.PutUint32(child[12:], 100)
	require.NoError(t, s.AddRegion(0x2000, "r--p", "", child))

	dir := filepath.Join(t.TempDir(), "dump")
	_, err := process_blob.Save(context.Background(), s, dir)
	require.NoError(t, err)
	return dir
}

// rows returns the whitespace separated fields of each table row.
func rows(out string) [][]string {
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	var fields [][]string
	for _, line := range lines[2:] {
		fields = append(fields, strings.Fields(line))
	}
	return fields
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "memscan", cmd.Use)

	for _, name := range []string{"types", "scan", "paths", "read", "write", "regions", "dump"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestTypesCommand(t *testing.T) {
	out, err := execute(t, "types")
	require.NoError(t, err)

	assert.Len(t, rows(out), len(scan_variant.Default().All()))
	assert.Contains(t, out, "pointer64")
	assert.Contains(t, out, "wide string")
}

func TestScanCommand(t *testing.T) {
	dir := fixture(t, 100)

	out, err := execute(t, "scan", "--from", dir, "--type", "int32", "--value", "100")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"0x1004", "100", "64000000"},
		{"0x200C", "100", "64000000"},
	}, rows(out))

	out, err = execute(t, "scan", "--from", dir, "--value", "100", "--writable")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"0x1004", "100", "64000000"}}, rows(out))

	out, err = execute(t, "scan", "--from", dir, "--predicate", "range", "--value", "500", "--upper", "600", "--workers", "1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"0x2008", "555", "2b020000"}}, rows(out))
}

func TestScanCommand_Rescan(t *testing.T) {
	before := fixture(t, 100)
	after := fixture(t, 90)
	saved := filepath.Join(t.TempDir(), "hp.yaml")

	_, err := execute(t, "scan", "--from", before, "--value", "100", "--save", saved)
	require.NoError(t, err)

	previous, err := loadResults(saved, "int32")
	require.NoError(t, err)
	assert.Equal(t, []search.Result{
		{Address: 0x1004, Raw: []byte{100, 0, 0, 0}},
		{Address: 0x200C, Raw: []byte{100, 0, 0, 0}},
	}, previous)

	out, err := execute(t, "scan", "--from", after, "--predicate", "decreased", "--previous", saved)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"0x1004", "90", "5a000000"}}, rows(out))

	_, err = execute(t, "scan", "--from", after, "--type", "int16", "--predicate", "changed", "--previous", saved)
	assert.ErrorContains(t, err, "not int16")
}

func TestScanCommand_SaveKeepsAll(t *testing.T) {
	const count = 300

	build := func(last int32) string {
		s := process_blob.New()
		data := make([]byte, 4*count)
		for i := 0; i < count; i++ {
			binary.LittleEndian.PutUint32(data[4*i:], 7)
		}
		binary.LittleEndian.PutUint32(data[4*(count-1):], uint32(last))
		require.NoError(t, s.AddRegion(0x10000, "rw-p", "", data))

		dir := filepath.Join(t.TempDir(), "dump")
		_, err := process_blob.Save(context.Background(), s, dir)
		require.NoError(t, err)
		return dir
	}
	before := build(7)
	after := build(3)
	saved := filepath.Join(t.TempDir(), "all.yaml")

	out, err := execute(t, "scan", "--from", before, "--value", "7", "--max", "10", "--save", saved)
	require.NoError(t, err)
	assert.Len(t, rows(out), 10)

	previous, err := loadResults(saved, "int32")
	require.NoError(t, err)
	require.Len(t, previous, count)
	assert.Equal(t, process.ProcessMemoryAddress(0x10000+4*(count-1)), previous[count-1].Address)

	out, err = execute(t, "scan", "--from", after, "--predicate", "decreased", "--previous", saved)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"0x104AC", "3", "03000000"}}, rows(out))

	out, err = execute(t, "scan", "--from", before, "--value", "7", "--max", "10")
	require.NoError(t, err)
	assert.Len(t, rows(out), 10)
}

func TestScanCommand_Errors(t *testing.T) {
	dir := fixture(t, 100)

	_, err := execute(t, "scan", "--value", "1")
	assert.ErrorIs(t, err, errNoTarget)

	_, err = execute(t, "scan", "--from", dir, "--type", "int128", "--value", "1")
	assert.ErrorIs(t, err, scan_variant.ErrUnknownType)

	_, err = execute(t, "scan", "--from", dir, "--predicate", "range", "--value", "1")
	assert.ErrorContains(t, err, "--upper")

	_, err = execute(t, "scan", "--from", dir, "--predicate", "changed")
	assert.ErrorIs(t, err, search.ErrNeedsPrevious)

	_, err = execute(t, "scan", "--from", dir, "--value", "abc")
	assert.ErrorIs(t, err, scan_variant.ErrParse)
}

func TestPathsCommand(t *testing.T) {
	dir := fixture(t, 100)

	out, err := execute(t, "paths", "--from", dir, "--base", "0x1000", "--value", "555", "--struct-size", "16")
	require.NoError(t, err)
	assert.Contains(t, out, "0x1000 +0x8 -> +0x8")
	assert.Contains(t, out, "555")

	_, err = execute(t, "paths", "--from", dir, "--value", "555")
	assert.ErrorContains(t, err, "--base")
}

func TestReadCommand(t *testing.T) {
	dir := fixture(t, 100)

	out, err := execute(t, "read", "--from", dir, "--addr", "0x1004")
	require.NoError(t, err)
	assert.Equal(t, "0x1004 int32 = 100\n", out)

	out, err = execute(t, "read", "--from", dir, "--addr", "0x1000", "--path", "8,8", "--type", "uint32")
	require.NoError(t, err)
	assert.Equal(t, "0x2008 uint32 = 555\n", out)

	out, err = execute(t, "read", "--from", dir, "--addr", "0x1008", "--type", "pointer")
	require.NoError(t, err)
	assert.Equal(t, "0x1008 pointer64 = 0x2000\n", out)

	out, err = execute(t, "read", "--from", dir, "--addr", "0x1000", "--dump", "16")
	require.NoError(t, err)
	assert.Contains(t, out, "00001000  07 00 00 00 64 00 00 00 | 00 20 00 00 00 00 00 00")
	assert.Contains(t, out, "| 0x2000")

	_, err = execute(t, "read", "--from", dir, "--addr", "0x9000")
	assert.ErrorIs(t, err, process.ErrAddressNotMapped)

	_, err = execute(t, "read", "--from", dir, "--addr", "0x1000", "--type", "ascii string")
	assert.ErrorIs(t, err, scan_variant.ErrSizeMismatch)
}

func TestWriteCommand(t *testing.T) {
	dir := fixture(t, 100)

	out, err := execute(t, "write", "--from", dir, "--addr", "0x1004", "--value=-1")
	require.NoError(t, err)
	assert.Equal(t, "wrote int32 -1 at 0x1004\n", out)

	_, err = execute(t, "write", "--from", dir, "--addr", "0x2008", "--value", "1")
	assert.ErrorIs(t, err, process.ErrNotWritable)

	_, err = execute(t, "write", "--from", dir, "--addr", "0x1004")
	assert.ErrorContains(t, err, "--value")
}

func TestRegionsCommand(t *testing.T) {
	dir := fixture(t, 100)

	out, err := execute(t, "regions", "--from", dir)
	require.NoError(t, err)

	got := rows(out)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"0x1000", "0x1010", "rw-p", "16", "bytes", "-"}, got[0])
	assert.Equal(t, []string{"0x2000", "0x2010", "r--p", "16", "bytes", "-"}, got[1])
}

func TestDumpCommand(t *testing.T) {
	dir := fixture(t, 100)
	copyDir := filepath.Join(t.TempDir(), "copy")

	out, err := execute(t, "dump", "--from", dir, "--output", copyDir)
	require.NoError(t, err)
	assert.Contains(t, out, "saved 2 regions")

	_, err = os.Stat(filepath.Join(copyDir, "metadata.json"))
	require.NoError(t, err)

	out, err = execute(t, "scan", "--from", copyDir, "--value", "555")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"0x2008", "555", "2b020000"}}, rows(out))
}

func TestParseOffsets(t *testing.T) {
	offsets, err := parseOffsets("010, 0x10,0X1c,8")
	require.NoError(t, err)
	assert.Equal(t, []process.ProcessMemorySize{10, 0x10, 0x1c, 8}, offsets)

	addr, err := parseAddress("0x2008")
	require.NoError(t, err)
	assert.Equal(t, process.ProcessMemoryAddress(0x2008), addr)

	addr, err = parseAddress("0100")
	require.NoError(t, err)
	assert.Equal(t, process.ProcessMemoryAddress(100), addr)

	for _, bad := range []string{"0x", "0o17", "0b101", "-8", "0x-8", "1f"} {
		_, err := parseOffsets(bad)
		assert.Error(t, err, bad)
	}
}
