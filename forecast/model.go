package forecast

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/go-workforce/feature"
	"github.com/aouyang1/go-workforce/forecast/util"
	"github.com/aouyang1/go-workforce/models"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrUntrainedModel = errors.New("model has not been trained")
	ErrNoFeatures     = errors.New("no feature options in model")
)

// TrainedModel binds the selected regressor to the feature engineer and schema it was
// trained against, and to the scaler fitted on its training inputs when the regressor
// expects standardized features. It is immutable after training.
type TrainedModel struct {
	regressor    models.Regressor
	scaler       *models.StandardScaler
	engineer     *feature.Engineer
	evaluations  []Evaluation
	trainEndTime time.Time
}

func (t *TrainedModel) Kind() models.Kind {
	return t.regressor.Kind()
}

func (t *TrainedModel) Schema() *feature.Schema {
	return t.engineer.Schema()
}

func (t *TrainedModel) Engineer() *feature.Engineer {
	return t.engineer
}

// Scaler is nil unless the regressor expects standardized inputs
func (t *TrainedModel) Scaler() *models.StandardScaler {
	return t.scaler
}

func (t *TrainedModel) TrainEndTime() time.Time {
	return t.trainEndTime
}

// Evaluation returns the held out scores of the selected regressor
func (t *TrainedModel) Evaluation() Evaluation {
	for _, e := range t.evaluations {
		if e.Kind == t.Kind() {
			return e
		}
	}
	return Evaluation{Kind: t.Kind()}
}

// Evaluations returns the held out scores of every candidate in rank order
func (t *TrainedModel) Evaluations() []Evaluation {
	evals := make([]Evaluation, len(t.evaluations))
	copy(evals, t.evaluations)
	return evals
}

// predictRows runs the regressor over rows laid out in schema order
func (t *TrainedModel) predictRows(rows *mat.Dense) ([]float64, error) {
	if t == nil || t.regressor == nil {
		return nil, ErrUntrainedModel
	}
	if _, n := rows.Dims(); n != t.Schema().Len() {
		return nil, fmt.Errorf("expected %d features but got %d, %w", t.Schema().Len(), n, ErrSchemaMismatch)
	}
	x := rows
	if t.scaler != nil {
		scaled, err := t.scaler.Transform(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scale features, %w", err)
		}
		x = scaled
	}
	return t.regressor.Predict(x)
}

// PredictFrame runs the model over every row of a derived frame. The frame must share the
// model's schema and carry no missing values.
func (t *TrainedModel) PredictFrame(f *feature.Frame) ([]float64, error) {
	if t == nil || t.regressor == nil {
		return nil, ErrUntrainedModel
	}
	if err := t.Schema().Compare(f.Schema); err != nil {
		return nil, err
	}
	x, err := f.Matrix()
	if err != nil {
		return nil, err
	}
	return t.predictRows(x)
}

// Model represents a serializable format of a trained model storing the feature options,
// fitted encoder and scaler, the regressor and the held out scores of every candidate
type Model struct {
	Kind         models.Kind            `json:"kind"`
	TrainEndTime time.Time              `json:"train_end_time"`
	Features     *feature.Options       `json:"features"`
	Schema       *feature.Schema        `json:"schema"`
	Encoder      *feature.Encoder       `json:"encoder"`
	Scaler       *models.StandardScaler `json:"scaler,omitempty"`
	Regressor    json.RawMessage        `json:"regressor"`
	Evaluations  []Evaluation           `json:"evaluations"`
}

// Model returns the serializable representation of the trained model
func (t *TrainedModel) Model() (Model, error) {
	if t == nil || t.regressor == nil {
		return Model{}, ErrUntrainedModel
	}
	reg, err := models.Marshal(t.regressor)
	if err != nil {
		return Model{}, err
	}
	return Model{
		Kind:         t.Kind(),
		TrainEndTime: t.trainEndTime,
		Features:     t.engineer.Options(),
		Schema:       t.engineer.Schema(),
		Encoder:      t.engineer.Encoder(),
		Scaler:       t.scaler,
		Regressor:    reg,
		Evaluations:  t.Evaluations(),
	}, nil
}

// NewFromModel restores a trained model ready for prediction. Calendar holidays are not
// serialized, set them on model.Features.Holidays before restoring if the model used them.
func NewFromModel(model Model) (*TrainedModel, error) {
	if model.Features == nil {
		return nil, ErrNoFeatures
	}
	eng, err := feature.Restore(model.Features, model.Encoder)
	if err != nil {
		return nil, fmt.Errorf("unable to restore feature engineer, %w", err)
	}
	if err := eng.Schema().Compare(model.Schema); err != nil {
		return nil, fmt.Errorf("restored features do not match the trained schema, %w", err)
	}
	reg, err := models.Unmarshal(model.Regressor)
	if err != nil {
		return nil, fmt.Errorf("unable to restore regressor, %w", err)
	}
	if reg.Kind() != model.Kind {
		return nil, fmt.Errorf("regressor is %s but model is %s, %w", reg.Kind(), model.Kind, models.ErrUnknownKind)
	}
	if reg.Kind().Standardized() && model.Scaler == nil {
		return nil, fmt.Errorf("%s requires a scaler, %w", reg.Kind(), models.ErrScalerNotFitted)
	}
	return &TrainedModel{
		regressor:    reg,
		scaler:       model.Scaler,
		engineer:     eng,
		evaluations:  model.Evaluations,
		trainEndTime: model.TrainEndTime,
	}, nil
}

func (m Model) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%s%sForecast:\n", prefix, util.IndentExpand(indent, 0)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sModel: %s\n", prefix, util.IndentExpand(indent, 1), m.Kind); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sTraining End Time: %s\n", prefix, util.IndentExpand(indent, 1), m.TrainEndTime.Format(time.DateOnly)); err != nil {
		return err
	}

	if m.Features != nil {
		if _, err := fmt.Fprintf(w, "%s%sOrigin: %s    Lags: %v    Rolling: %v\n",
			prefix, util.IndentExpand(indent, 1),
			m.Features.Origin.Format(time.DateOnly), m.Features.Lags, m.Features.RollingWindows); err != nil {
			return err
		}
	}

	if err := m.scoresTablePrint(w, prefix, indent, 0); err != nil {
		return err
	}
	return m.weightsTablePrint(w, prefix, indent, 0)
}

func (m Model) scoresTablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	if len(m.Evaluations) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "%s%sScores:\n", prefix, util.IndentExpand(indent, indentGrowth)); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sModel\tRMSE\tMAE\tR2\tMAPE\t\n", prefix, util.IndentExpand(indent, indentGrowth+1)); err != nil {
		return err
	}
	for _, e := range m.Evaluations {
		mape := "undefined"
		if e.MAPEDefined {
			mape = fmt.Sprintf("%.2f%%", e.MAPE)
		}
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t%.3f\t%.3f\t%.3f\t%s\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+1),
			e.Kind, e.RMSE, e.MAE, e.R2, mape); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

// weightsTablePrint lists the coefficients by feature when the selected regressor is linear
func (m Model) weightsTablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	if m.Kind != models.KindLinear || m.Schema == nil {
		return nil
	}
	reg, err := models.Unmarshal(m.Regressor)
	if err != nil {
		return err
	}
	linear, ok := reg.(*models.LinearRegression)
	if !ok {
		return nil
	}

	if _, err := fmt.Fprintf(w, "%s%sWeights:\n", prefix, util.IndentExpand(indent, indentGrowth)); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sType\tFeature\tValue\t\n", prefix, util.IndentExpand(indent, indentGrowth+1)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tbl, "%s%s%s\t%s\t%.3f\t\n", prefix, util.IndentExpand(indent, indentGrowth+1),
		"intercept", "", linear.Intercept); err != nil {
		return err
	}
	for i, f := range m.Schema.Features() {
		if i >= len(linear.Coef) {
			break
		}
		val := fmt.Sprintf("%.3f", linear.Coef[i])
		if linear.Coef[i] == 0 {
			val = "..."
		}
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t%s\t%s\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+1),
			f.Type, f.Name, val); err != nil {
			return err
		}
	}
	return tbl.Flush()
}
