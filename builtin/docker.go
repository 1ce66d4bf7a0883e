package builtin

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"

	"github.com/radiantlogicinc/TalkEngine/command"
)

// DockerImageExists is the catalog name of the local image lookup.
const DockerImageExists = "docker.image_exists"

// DockerImageParams is the typed parameter set for docker.image_exists.
type DockerImageParams struct {
	Image string `json:"image"`
}

// DockerImageStatus is the execution artifact of docker.image_exists.
type DockerImageStatus struct {
	Image  string `json:"image"`
	Exists bool   `json:"exists"`
}

func init() {
	Register(DockerImageExists, func(Settings) (command.Definition, error) {
		return NewDockerImageExists(), nil
	})
}

// NewDockerImageExists builds the local image lookup command. The Docker
// client is created from the environment per invocation, so the command
// registers on hosts without a daemon and fails only when run.
func NewDockerImageExists() command.Definition {
	return command.Definition{
		Description: "Check whether a Docker image exists locally",
		Parameters: command.Schema{
			"image": {Type: command.TypeString, Required: true, Description: "image reference"},
		},
		Executable: &command.Executable{
			Params: DockerImageParams{},
			Result: DockerImageStatus{},
			Run: func(ctx context.Context, params any) (any, error) {
				p := params.(*DockerImageParams)

				cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
				if err != nil {
					return nil, fmt.Errorf("creating docker client: %w", err)
				}
				defer cli.Close()

				images, err := cli.ImageList(ctx, image.ListOptions{
					Filters: filters.NewArgs(filters.Arg("reference", p.Image)),
				})
				if err != nil {
					return nil, fmt.Errorf("listing images: %w", err)
				}
				return DockerImageStatus{Image: p.Image, Exists: len(images) > 0}, nil
			},
		},
	}
}
