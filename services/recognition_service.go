package services

import (
	"context"
	"fmt"

	"mealrec/models"
	"mealrec/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// LabelDetector names what is in a photo, most confident first.
type LabelDetector interface {
	DetectLabels(ctx context.Context, image []byte) ([]string, error)
}

type RekognitionDetector struct {
	client        *rekognition.Client
	maxLabels     int32
	minConfidence float32
}

func NewRekognitionDetector(client *rekognition.Client) *RekognitionDetector {
	return &RekognitionDetector{client: client, maxLabels: 5, minConfidence: 75}
}

func (r *RekognitionDetector) DetectLabels(ctx context.Context, image []byte) ([]string, error) {
	out, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: image},
		MaxLabels:     aws.Int32(r.maxLabels),
		MinConfidence: aws.Float32(r.minConfidence),
	})
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(out.Labels))
	for _, l := range out.Labels {
		if l.Name != nil {
			labels = append(labels, *l.Name)
		}
	}
	return labels, nil
}

// RecognitionResult pairs the detected labels with catalog foods that match them.
type RecognitionResult struct {
	Labels  []string      `json:"labels"`
	Options []models.Food `json:"options"`
}

type FoodRecognizer struct {
	detector LabelDetector
	foods    repository.FoodRepository
}

func NewFoodRecognizer(detector LabelDetector, foods repository.FoodRepository) *FoodRecognizer {
	return &FoodRecognizer{detector: detector, foods: foods}
}

// Recognize looks up each label in the catalog and returns the distinct hits
// in label order.
func (r *FoodRecognizer) Recognize(ctx context.Context, dataURI string) (*RecognitionResult, error) {
	_, image, err := DecodeDataURI(dataURI)
	if err != nil {
		return nil, err
	}
	labels, err := r.detector.DetectLabels(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("%w: label detection: %w", ErrUpstream, err)
	}

	res := &RecognitionResult{Labels: labels, Options: []models.Food{}}
	seen := map[uint]struct{}{}
	for _, label := range labels {
		foods, err := r.foods.Search(ctx, label, 10)
		if err != nil {
			return nil, fmt.Errorf("search catalog for %q: %w", label, err)
		}
		for _, f := range foods {
			if _, dup := seen[f.ID]; dup {
				continue
			}
			seen[f.ID] = struct{}{}
			res.Options = append(res.Options, f)
		}
	}
	return res, nil
}
