// Package demo implements the TeamCityClient port with fixed fixture data so
// the dashboard can run without a CI server.
package demo

import (
	"context"
	"strings"

	"github.com/ericfisherdev/tcpanel/internal/domain/model"
	"github.com/ericfisherdev/tcpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TeamCityClient = (*Client)(nil)

const demoURL = "http://teamcity.demo"

// Client serves a small fixed catalog.
type Client struct{}

// NewClient creates a demo client.
func NewClient() *Client {
	return &Client{}
}

var projects = []model.Project{
	{ID: "_Root", Name: "<Root project>"},
	{ID: "Go2Version612", Name: "GO2 Version 612", ParentID: "_Root"},
	{ID: "Go2Version612_Plugins", Name: "Plugins", ParentID: "Go2Version612"},
	{ID: "Go2Version612_ProductInstall", Name: "Product Install", ParentID: "Go2Version612"},
	{ID: "Go2Version612_ProductInstall_Meca", Name: "Meca", ParentID: "Go2Version612_ProductInstall"},
	{ID: "Go2VersionNew", Name: "GO2 Version New", ParentID: "_Root"},
	{ID: "Go2VersionNew_Plugins", Name: "Plugins", ParentID: "Go2VersionNew"},
	{ID: "Go2VersionNew_Plugins_AlignerTrimmingCam", Name: "Aligner Trimming Cam", ParentID: "Go2VersionNew_Plugins"},
	{ID: "InternalLibNew", Name: "Internal Libraries New", ParentID: "_Root"},
	{ID: "InternalLibNew_GO2Dlls", Name: "GO2 Dlls", ParentID: "InternalLibNew"},
	{ID: "WebServices", Name: "Web Services", ParentID: "_Root"},
	{ID: "WebServices_Portal", Name: "Portal", ParentID: "WebServices"},
}

var buildTypes = []struct {
	id, name, projectID string
	run                 model.BuildRun
}{
	{"Go2Version612_Plugins_BuildDebug", "BuildDebug", "Go2Version612_Plugins",
		model.BuildRun{ID: 1001, Number: "612.148", Status: model.BuildStatusSuccess, State: model.BuildStateFinished}},
	{"Go2Version612_Plugins_BuildRelease", "BuildRelease", "Go2Version612_Plugins",
		model.BuildRun{ID: 1002, Number: "612.149", Status: model.BuildStatusFailure, State: model.BuildStateFinished, StatusText: "Compilation error"}},
	{"Go2Version612_ProductInstall_Meca_InstallGO2cam", "InstallGO2cam", "Go2Version612_ProductInstall_Meca",
		model.BuildRun{ID: 1003, Number: "612.77", Status: model.BuildStatusSuccess, State: model.BuildStateRunning}},
	{"Go2VersionNew_Plugins_AlignerTrimmingCam_MakeInstallers", "MakeInstallers", "Go2VersionNew_Plugins_AlignerTrimmingCam",
		model.BuildRun{ID: 1004, Number: "700.12", Status: model.BuildStatusSuccess, State: model.BuildStateFinished}},
	{"InternalLibNew_GO2Dlls_TestIncrementalBuild", "TestIncrementalBuild", "InternalLibNew_GO2Dlls",
		model.BuildRun{ID: 1005, Number: "88", Status: model.BuildStatusError, State: model.BuildStateFinished, StatusText: "Agent disconnected"}},
	{"WebServices_Portal_Deploy", "Deploy", "WebServices_Portal",
		model.BuildRun{ID: 1006, Number: "2.4.1", Status: model.BuildStatusSuccess, State: model.BuildStateFinished}},
}

var agents = []model.Agent{
	{ID: "1", Name: "build-win-01", TypeID: "1", Connected: true, Enabled: true, Authorized: true, UpToDate: true},
	{ID: "2", Name: "build-win-02", TypeID: "2", Connected: true, Enabled: true, Authorized: true, UpToDate: true},
	{ID: "3", Name: "build-linux-01", TypeID: "3", Connected: false, Enabled: true, Authorized: true, UpToDate: true},
}

// FetchProjects returns the fixture projects.
func (c *Client) FetchProjects(_ context.Context) ([]model.Project, error) {
	return append([]model.Project(nil), projects...), nil
}

// FetchBuildTypes returns the fixture build configurations.
func (c *Client) FetchBuildTypes(_ context.Context) ([]model.BuildType, error) {
	out := make([]model.BuildType, 0, len(buildTypes))
	for _, bt := range buildTypes {
		out = append(out, model.BuildType{
			ID:        bt.id,
			Name:      bt.name,
			ProjectID: bt.projectID,
			WebURL:    demoURL + "/viewType.html?buildTypeId=" + bt.id,
		})
	}
	return out, nil
}

// FetchLatestBuild returns the fixture run for the configuration.
func (c *Client) FetchLatestBuild(_ context.Context, buildTypeID string, runningOnly bool) (*model.BuildRun, error) {
	for _, bt := range buildTypes {
		if !strings.EqualFold(bt.id, buildTypeID) {
			continue
		}
		if runningOnly && bt.run.State != model.BuildStateRunning {
			return nil, nil
		}
		run := bt.run
		run.WebURL = demoURL + "/viewLog.html?buildTypeId=" + bt.id
		return &run, nil
	}
	return nil, nil
}

// FetchAgents returns the fixture agents.
func (c *Client) FetchAgents(_ context.Context) ([]model.Agent, error) {
	return append([]model.Agent(nil), agents...), nil
}
