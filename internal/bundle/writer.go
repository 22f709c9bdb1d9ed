package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scriptsmith/internal/errors"
)

// File names every bundle contains.
const (
	SourceFile     = "main.go"
	ManifestFile   = "manifest.yaml"
	DescriptorFile = "descriptor.yaml"
	DockerfileName = "Dockerfile"
	EnvExampleFile = "env.example"
)

// Write places the bundle on disk under root. The directory name
// combines the plan name, a UTC timestamp, and a short source checksum,
// so repeated runs of the same plan never collide. The file contents
// themselves are deterministic; only the directory name carries time.
func (p *Packager) Write(b *Bundle, root, baseImage string) error {
	b.CreatedAt = time.Now().UTC()

	dirName := fmt.Sprintf("%s-%s-%s",
		sanitizeName(b.Name),
		b.CreatedAt.Format("20060102-150405"),
		b.Manifest.Checksum[:8])
	dir := filepath.Join(root, dirName)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeBundleWrite, errors.StagePackaging,
			"cannot create bundle directory", err)
	}

	manifestYAML, err := marshalYAML(b.Manifest)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBundleWrite, errors.StagePackaging,
			"cannot encode manifest", err)
	}
	descriptorYAML, err := marshalYAML(b.Descriptor)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBundleWrite, errors.StagePackaging,
			"cannot encode descriptor", err)
	}

	files := map[string][]byte{
		SourceFile:     []byte(b.Source),
		ManifestFile:   manifestYAML,
		DescriptorFile: descriptorYAML,
		DockerfileName: []byte(dockerfile(baseImage, b.Descriptor)),
	}
	if envs := environmentVariables(b.Source); len(envs) > 0 {
		files[EnvExampleFile] = []byte(envExample(envs))
	}

	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeBundleWrite, errors.StagePackaging,
				fmt.Sprintf("cannot write %s", name), err)
		}
	}

	b.Dir = dir
	p.logger.Info("bundle written", "dir", dir)
	return nil
}

// dockerfile renders the container build file. The entry point runs
// go mod tidy so the image resolves the manifest dependencies itself;
// bundles carry no lock file.
func dockerfile(baseImage string, d *Descriptor) string {
	var b strings.Builder

	fmt.Fprintf(&b, "FROM %s\n\n", baseImage)
	b.WriteString("WORKDIR /app\n")
	b.WriteString("COPY . .\n\n")
	b.WriteString("RUN go mod init app && go mod tidy && go build -o /app/run main.go\n\n")
	if d.Kind == KindService && d.ServicePort > 0 {
		fmt.Fprintf(&b, "EXPOSE %d\n\n", d.ServicePort)
	}
	b.WriteString(`CMD ["/app/run"]` + "\n")

	return b.String()
}

func envExample(names []string) string {
	var b strings.Builder
	b.WriteString("# Environment variables the program reads.\n")
	for _, name := range names {
		fmt.Fprintf(&b, "%s=\n", name)
	}
	return b.String()
}

// sanitizeName maps a plan name onto the characters a directory and a
// docker tag both accept.
func sanitizeName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == '_', r == ' ', r == '.':
			return '-'
		default:
			return -1
		}
	}, name)

	mapped = strings.Trim(mapped, "-")
	if mapped == "" {
		return "bundle"
	}
	return mapped
}
