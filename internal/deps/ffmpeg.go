package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// CheckFFmpeg reports the ffmpeg executable the muxer will run. binary may
// be a bare command name resolved through PATH or an explicit path.
func CheckFFmpeg(binary string) Status {
	result := Status{
		Name:        "FFmpeg",
		Description: "Required for muxing narration into the clip",
	}

	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	result.Command = binary

	if strings.ContainsRune(binary, filepath.Separator) {
		info, err := os.Stat(binary)
		switch {
		case err != nil:
			result.Detail = fmt.Sprintf("binary %q not found", binary)
		case !isExecutable(info):
			result.Detail = fmt.Sprintf("binary %q is not executable", binary)
		default:
			result.Available = true
		}
		return result
	}

	resolved, err := exec.LookPath(binary)
	if err != nil {
		result.Detail = fmt.Sprintf("binary %q not found", binary)
		return result
	}
	result.Command = resolved
	result.Available = true
	return result
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
