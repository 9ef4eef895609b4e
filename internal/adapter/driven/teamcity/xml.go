package teamcity

import (
	"encoding/xml"
	"fmt"
	"net/url"

	"github.com/ericfisherdev/tcpanel/internal/domain/model"
)

// Field selections keep responses small; TeamCity returns only these attributes.
const (
	projectFields   = "project(id,name,parentProjectId,archived)"
	buildTypeFields = "buildType(id,name,projectName,projectId,webUrl,project(id,name,parentProjectId,archived,parentProject(name,archived)))"
	buildFields     = "build(id,number,status,state,webUrl,statusText)"
)

type xmlProjects struct {
	XMLName  xml.Name     `xml:"projects"`
	Projects []xmlProject `xml:"project"`
}

type xmlProject struct {
	ID              string            `xml:"id,attr"`
	Name            string            `xml:"name,attr"`
	ParentProjectID string            `xml:"parentProjectId,attr"`
	Archived        bool              `xml:"archived,attr"`
	ParentProject   *xmlParentProject `xml:"parentProject"`
}

type xmlParentProject struct {
	Name     string `xml:"name,attr"`
	Archived bool   `xml:"archived,attr"`
}

type xmlBuildTypes struct {
	XMLName    xml.Name       `xml:"buildTypes"`
	BuildTypes []xmlBuildType `xml:"buildType"`
}

type xmlBuildType struct {
	ID          string      `xml:"id,attr"`
	Name        string      `xml:"name,attr"`
	ProjectName string      `xml:"projectName,attr"`
	ProjectID   string      `xml:"projectId,attr"`
	WebURL      string      `xml:"webUrl,attr"`
	Project     *xmlProject `xml:"project"`
}

type xmlBuilds struct {
	XMLName xml.Name   `xml:"builds"`
	Builds  []xmlBuild `xml:"build"`
}

type xmlBuild struct {
	ID         int64  `xml:"id,attr"`
	Number     string `xml:"number,attr"`
	Status     string `xml:"status,attr"`
	State      string `xml:"state,attr"`
	WebURL     string `xml:"webUrl,attr"`
	StatusText string `xml:"statusText"`
}

type xmlAgents struct {
	XMLName xml.Name   `xml:"agents"`
	Agents  []xmlAgent `xml:"agent"`
}

type xmlAgent struct {
	ID         string `xml:"id,attr"`
	Name       string `xml:"name,attr"`
	TypeID     string `xml:"typeId,attr"`
	Href       string `xml:"href,attr"`
	WebURL     string `xml:"webUrl,attr"`
	Connected  bool   `xml:"connected,attr"`
	Enabled    bool   `xml:"enabled,attr"`
	Authorized bool   `xml:"authorized,attr"`
	UpToDate   bool   `xml:"uptodate,attr"`
}

func mapProject(p xmlProject) model.Project {
	return model.Project{
		ID:       p.ID,
		Name:     p.Name,
		ParentID: p.ParentProjectID,
		Archived: p.Archived,
	}
}

// mapBuildType converts a build type, defaulting the web URL to the
// configuration overview page when TeamCity omits it.
func mapBuildType(bt xmlBuildType, baseURL string) model.BuildType {
	out := model.BuildType{
		ID:          bt.ID,
		Name:        bt.Name,
		ProjectID:   bt.ProjectID,
		ProjectName: bt.ProjectName,
		WebURL:      bt.WebURL,
	}

	if bt.Project != nil {
		if out.ProjectID == "" {
			out.ProjectID = bt.Project.ID
		}
		out.Archived = bt.Project.Archived
		if bt.Project.ParentProject != nil {
			out.ParentArchived = bt.Project.ParentProject.Archived
		}
	}

	if out.WebURL == "" {
		out.WebURL = fmt.Sprintf("%s/viewType.html?buildTypeId=%s", baseURL, url.QueryEscape(bt.ID))
	}

	return out
}

func mapBuild(b xmlBuild) *model.BuildRun {
	return &model.BuildRun{
		ID:         b.ID,
		Number:     b.Number,
		Status:     model.ParseBuildStatus(b.Status),
		State:      model.ParseBuildState(b.State),
		StatusText: b.StatusText,
		WebURL:     b.WebURL,
	}
}

func mapAgent(a xmlAgent) model.Agent {
	return model.Agent{
		ID:         a.ID,
		Name:       a.Name,
		TypeID:     a.TypeID,
		Connected:  a.Connected,
		Enabled:    a.Enabled,
		Authorized: a.Authorized,
		UpToDate:   a.UpToDate,
		WebURL:     a.WebURL,
	}
}
