package session

import (
	"context"
	"fmt"

	"github.com/CK6170/Linviz-go/eigen"
	"github.com/CK6170/Linviz-go/matrix"
	"github.com/CK6170/Linviz-go/models"
	"github.com/CK6170/Linviz-go/pca"
	"github.com/CK6170/Linviz-go/transform"
)

// Backend is the numerical service the orchestrators call. *client.Client
// talks to it over HTTP; Local runs the same computations in process.
type Backend interface {
	Transform(ctx context.Context, req models.TransformRequest) (*models.TransformResponse, error)
	PowerMethod(ctx context.Context, req models.PowerMethodRequest) (*models.PowerMethodResponse, error)
	PCA(ctx context.Context, data [][]float64) (*models.PCAResponse, error)
}

// Local is an in-process Backend for offline use. Progress, when set, sees
// every power-method iterate as it is produced.
type Local struct {
	Progress func(eigen.Record)
}

func (Local) Transform(_ context.Context, req models.TransformRequest) (*models.TransformResponse, error) {
	points, err := matrix.FromRows(req.Matrix)
	if err != nil {
		return nil, err
	}
	out, err := transform.RotateTranslate(points, req.Rotation, req.Translation)
	if err != nil {
		return nil, err
	}
	return &models.TransformResponse{Transformed: out.Values}, nil
}

func (l Local) PowerMethod(ctx context.Context, req models.PowerMethodRequest) (*models.PowerMethodResponse, error) {
	m, err := matrix.Square(req.Matrix)
	if err != nil {
		return nil, err
	}
	trueMax, err := eigen.DominantEigenvalue(m)
	if err != nil {
		return nil, err
	}
	var emit func(eigen.Record) error
	if l.Progress != nil {
		emit = func(r eigen.Record) error {
			l.Progress(r)
			return nil
		}
	}
	records, err := eigen.Iterate(ctx, m, req.Options(), emit)
	if err != nil {
		return nil, fmt.Errorf("power method: %w", err)
	}
	resp := models.NewPowerMethodResponse(records, trueMax)
	return &resp, nil
}

func (Local) PCA(_ context.Context, data [][]float64) (*models.PCAResponse, error) {
	return pca.Decompose(data)
}
