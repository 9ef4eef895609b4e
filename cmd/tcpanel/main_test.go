package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/tcpanel/internal/application"
	"github.com/ericfisherdev/tcpanel/internal/domain/model"
)

func TestPrintForest(t *testing.T) {
	records := []model.BuildRecord{
		{ID: "V612_Debug", Name: "BuildDebug", ProjectPath: []string{"GO2 Version 612", "Plugins"},
			Status: model.BuildStatusSuccess, State: model.BuildStateFinished},
		{ID: "V612_Install", Name: "Install", ProjectPath: []string{"GO2 Version 612"},
			Status: model.BuildStatusFailure, State: model.BuildStateRunning},
		{ID: "Portal_Deploy", Name: "Deploy", ProjectPath: []string{"Web Services"},
			Status: model.BuildStatusFailure, State: model.BuildStateFinished},
	}
	forest, _ := application.NewTreeBuilder(application.DepthNone()).Build(records, map[string]struct{}{"V612_Debug": {}})

	var buf bytes.Buffer
	require.NoError(t, printForest(&buf, forest))

	want := "GO2 Version 612/\n" +
		"  [ ] Install (V612_Install) RUNNING\n" +
		"  Plugins/\n" +
		"    [x] BuildDebug (V612_Debug) SUCCESS\n" +
		"Web Services/\n" +
		"  [ ] Deploy (Portal_Deploy) FAILURE\n" +
		"3 builds\n"
	assert.Equal(t, want, buf.String())
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printReport(&buf, model.VersionReport{
		NewVersions:     []string{"GO2 Version 613"},
		CurrentVersions: []string{"GO2 Version 613", "GO2 Version 612"},
		Recommendations: []string{"New versions detected: GO2 Version 613"},
		AutoUpdated:     true,
	}))

	out := buf.String()
	assert.Contains(t, out, "new:       GO2 Version 613\n")
	assert.Contains(t, out, "obsolete:  (none)\n")
	assert.Contains(t, out, "saved:     true\n")
	assert.Contains(t, out, "- New versions detected: GO2 Version 613\n")
}

func TestRootCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["tree"])
	assert.True(t, names["versions"])

	detect, _, err := rootCmd.Find([]string{"versions", "detect"})
	require.NoError(t, err)
	assert.Equal(t, "detect", detect.Name())
}
