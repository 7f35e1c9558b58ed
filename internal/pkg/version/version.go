// Package version 링커 플래그로 주입된 빌드 정보를 제공합니다.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
)

const unknown = "unknown"

// -ldflags "-X github.com/darkkaiser/autodelivery-server/internal/pkg/version.appVersion=..." 로 주입됩니다.
var (
	appVersion  = ""
	gitCommit   = ""
	buildDate   = ""
	buildNumber = ""
)

var readBuildInfo = debug.ReadBuildInfo

// Info 빌드 메타데이터
type Info struct {
	Version     string `json:"version"`
	Commit      string `json:"commit"`
	BuildDate   string `json:"build_date"`
	BuildNumber string `json:"build_number"`
	GoVersion   string `json:"go_version"`
	Modified    bool   `json:"modified"`
}

var current = sync.OnceValue(func() Info {
	return resolve(Info{
		Version:     strings.TrimSpace(appVersion),
		Commit:      strings.TrimSpace(gitCommit),
		BuildDate:   strings.TrimSpace(buildDate),
		BuildNumber: strings.TrimSpace(buildNumber),
	})
})

// Get 현재 실행 파일의 빌드 정보를 반환합니다.
func Get() Info {
	return current()
}

// resolve 주입되지 않은 값을 실행 파일의 VCS 메타데이터로 채우고, 그래도 비어 있으면 unknown으로 둡니다.
func resolve(bi Info) Info {
	bi.GoVersion = runtime.Version()

	if val, ok := readBuildInfo(); ok {
		for _, s := range val.Settings {
			switch s.Key {
			case "vcs.revision":
				if bi.Commit == "" {
					bi.Commit = s.Value
				}
			case "vcs.time":
				if bi.BuildDate == "" {
					bi.BuildDate = s.Value
				}
			case "vcs.modified":
				bi.Modified = s.Value == "true"
			}
		}
		if bi.Version == "" && val.Main.Version != "" && val.Main.Version != "(devel)" {
			bi.Version = val.Main.Version
		}
	}

	if bi.Version == "" {
		bi.Version = unknown
	}
	if bi.Commit == "" {
		bi.Commit = unknown
	}
	if bi.BuildDate == "" {
		bi.BuildDate = unknown
	}
	if bi.BuildNumber == "" {
		bi.BuildNumber = "0"
	}

	return bi
}

// String 시작 로그용 한 줄 요약
func (i Info) String() string {
	v := i.Version
	if i.Modified {
		v += "+dirty"
	}

	commit := i.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}

	return fmt.Sprintf("%s (commit: %s, build: %s, date: %s, %s)", v, commit, i.BuildNumber, i.BuildDate, i.GoVersion)
}
