package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rudivdz85/nautical-fin/internal/commands"
	"github.com/rudivdz85/nautical-fin/internal/config"
)

// execute runs the command tree in-process and returns what it wrote to its
// output writer.
func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out, errOut bytes.Buffer
	root := commands.NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	require.NoError(t, root.ExecuteContext(context.Background()), "fin %s: %s", strings.Join(args, " "), errOut.String())
	return out.String()
}

func TestOutputGoesToCommandWriter(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, config.FileName)

	assert.Contains(t, execute(t, "init", dir, "--user", "user_1"), "Initialized ledger")

	acct := strings.TrimSpace(execute(t, "account", "add", "--name", "Wallet", "--type", "cash", "--balance", "20", "--config", cfgPath))
	assert.True(t, strings.HasPrefix(acct, "acc_"))
	assert.Contains(t, execute(t, "account", "list", "--config", cfgPath), acct)
	assert.Contains(t, execute(t, "account", "show", acct, "--config", cfgPath), "Balance:  20.00")

	assert.Contains(t, execute(t, "category", "list", "--config", cfgPath), "Dining")
	cat := strings.TrimSpace(execute(t, "category", "add", "Pets", "--config", cfgPath))
	assert.True(t, strings.HasPrefix(cat, "cat_"))

	rule := strings.TrimSpace(execute(t, "rule", "add", "--category", "Pets", "--merchant", "Petco", "--config", cfgPath))
	assert.True(t, strings.HasPrefix(rule, "rul_"))
	assert.Contains(t, execute(t, "rule", "list", "--config", cfgPath), "merchant_exact=Petco")

	mapping := strings.TrimSpace(execute(t, "merchant", "add", "PETCO #221", "Petco", "--config", cfgPath))
	assert.True(t, strings.HasPrefix(mapping, "map_"))
	assert.Contains(t, execute(t, "merchant", "list", "--config", cfgPath), "PETCO #221")

	imp := strings.TrimSpace(execute(t, "import", "create", "--account", acct, "--config", cfgPath))
	assert.True(t, strings.HasPrefix(imp, "imp_"))
}

func TestImportList_OpenImportsOmitCounters(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, config.FileName)
	execute(t, "init", dir, "--user", "user_1")
	acct := strings.TrimSpace(execute(t, "account", "add", "--name", "Checking", "--config", cfgPath))

	open := strings.TrimSpace(execute(t, "import", "create", "--account", acct, "--config", cfgPath))
	done := strings.TrimSpace(execute(t, "import", "create", "--account", acct, "--config", cfgPath))
	batchPath := filepath.Join(dir, "batch.json")
	writeFile(t, batchPath, batchJSON)
	execute(t, "import", "process", done, "--file", batchPath, "--config", cfgPath)

	lines := map[string]string{}
	for _, line := range strings.Split(strings.TrimSpace(execute(t, "import", "list", "--config", cfgPath)), "\n") {
		lines[strings.SplitN(line, "\t", 2)[0]] = line
	}
	require.Len(t, lines, 2)
	assert.Equal(t, open+"\t"+acct+"\tprocessing", lines[open])
	assert.Contains(t, lines[done], "\tcompleted\timported=3 duplicates=1 failed=0")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
