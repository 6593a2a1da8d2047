package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"go.uber.org/zap"

	"lazylearn/internal/data"
	"lazylearn/internal/features"
	"lazylearn/internal/models"
	"lazylearn/pkg/utils"
)

func main() {
	logger := utils.Logger()
	defer logger.Sync()

	regen := flag.Bool("regen", true, "Regenerate the synthetic dataset")
	n := flag.Int("n", 50000, "Number of synthetic points")
	dim := flag.Int("dim", 8, "Feature dimension of synthetic points")
	spread := flag.Float64("spread", 2.5, "Cluster noise for synthetic points")
	out := flag.String("out", "data/synthetic.csv", "Dataset CSV path")
	k := flag.Int("k", 5, "Neighbour count")
	kAuto := flag.Bool("k_auto", true, "Pick the k that maximises validation accuracy")
	kMax := flag.Int("k_max", 25, "Upper bound for automatic k selection")
	standardize := flag.Bool("standardize", true, "Standardize features before training")
	modelOut := flag.String("model_out", "models/knn_model.gob", "Model bundle path")
	curve := flag.Bool("curve", true, "Generate a learning curve (PNG and CSV)")
	curvePoints := flag.Int("curve_points", 10, "Number of points on the curve")
	curveImg := flag.String("curve_out_img", "cmd/api/static/learning_curve.png", "Curve PNG path")
	curveCsv := flag.String("curve_out_csv", "data/learning_curve.csv", "Curve CSV path")
	curveMin := flag.Int("curve_min", 500, "Smallest training size on the curve")
	curveLog := flag.Bool("curve_log", true, "Space curve sizes logarithmically")
	flag.Parse()

	if *regen {
		logger.Info("Generating synthetic dataset",
			zap.Int("n", *n), zap.Int("dim", *dim), zap.String("out", *out))
		if err := data.GenerateSyntheticPoints(*n, *dim, *spread, *out); err != nil {
			logger.Fatal("Dataset generation failed", zap.Error(err))
		}
	}

	X, y, err := data.LoadCSV(*out)
	if err != nil {
		logger.Fatal("Failed to load dataset", zap.Error(err))
	}
	logger.Info("Dataset loaded", zap.Int("rows", len(X)), zap.Int("dim", len(X[0])))

	rand.Seed(time.Now().UnixNano())
	Xtrain, ytrain, Xtest, ytest := stratifiedSplit(X, y, 0.8)

	scaler := features.NewStandardScaler()
	if *standardize {
		if Xtrain, err = scaler.FitTransform(Xtrain); err != nil {
			logger.Fatal("Failed to fit scaler", zap.Error(err))
		}
		Xtest = scaler.Transform(Xtest)
	}

	kUsed := *k
	if *kAuto {
		kUsed = bestK(Xtrain, ytrain, *kMax)
		logger.Info("Selected k on validation slice", zap.Int("k", kUsed))
	}

	mdl := models.NewKNN[string](kUsed)
	if err := mdl.Fit(Xtrain, ytrain); err != nil {
		logger.Fatal("Failed to fit KNN", zap.Error(err))
	}

	preds, err := mdl.Predict(Xtest)
	if err != nil {
		logger.Fatal("Holdout prediction failed", zap.Error(err))
	}
	acc := accuracy(ytest, preds)
	prec, rec, f1 := macroPRF1(ytest, preds)
	logger.Info("Holdout metrics",
		zap.String("model", mdl.Name()),
		zap.Int("k", kUsed),
		zap.Float64("accuracy", acc),
		zap.Float64("macro_precision", prec),
		zap.Float64("macro_recall", rec),
		zap.Float64("macro_f1", f1),
	)

	bundle := &models.Bundle{Model: mdl}
	if *standardize {
		bundle.Scaler = scaler
	}
	if err := models.SaveBundle(*modelOut, bundle); err != nil {
		logger.Fatal("Failed to save model", zap.Error(err))
	}
	logger.Info("Model saved", zap.String("path", *modelOut))
	fmt.Println("Model:", mdl.Name(), "k:", kUsed)

	if *curve {
		sizes := computeCurveSizes(len(Xtrain), *curvePoints, *curveMin, *curveLog)
		trainAcc := make([]float64, len(sizes))
		testAcc := make([]float64, len(sizes))
		for i, s := range sizes {
			cm := models.NewKNN[string](kUsed)
			if err := cm.Fit(Xtrain[:s], ytrain[:s]); err != nil {
				logger.Fatal("Curve point training failed", zap.Error(err))
			}
			pTrain, err := cm.Predict(Xtrain[:s])
			if err != nil {
				logger.Fatal("Curve point prediction failed", zap.Error(err))
			}
			pTest, err := cm.Predict(Xtest)
			if err != nil {
				logger.Fatal("Curve point prediction failed", zap.Error(err))
			}
			trainAcc[i] = accuracy(ytrain[:s], pTrain)
			testAcc[i] = accuracy(ytest, pTest)
		}
		if err := writeCurveCSV(*curveCsv, sizes, trainAcc, testAcc); err != nil {
			logger.Warn("Failed to write curve CSV", zap.Error(err))
		}
		if err := plotCurvePNG(*curveImg, sizes, trainAcc, testAcc); err != nil {
			logger.Warn("Failed to write curve PNG", zap.Error(err))
		} else {
			logger.Info("Learning curve generated",
				zap.String("png", *curveImg), zap.String("csv", *curveCsv))
		}
	}
}

// stratifiedSplit shuffles within each class and keeps frac of every class
// in the training part, so rare classes keep their share on both sides.
func stratifiedSplit(X [][]float64, y []string, frac float64) (Xtrain [][]float64, ytrain []string, Xtest [][]float64, ytest []string) {
	byClass := map[string][]int{}
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}
	classes := make([]string, 0, len(byClass))
	for label := range byClass {
		classes = append(classes, label)
	}
	sort.Strings(classes)

	var trainIdx, testIdx []int
	for _, label := range classes {
		idx := byClass[label]
		perm := rand.Perm(len(idx))
		cut := int(frac * float64(len(idx)))
		for i, p := range perm {
			if i < cut {
				trainIdx = append(trainIdx, idx[p])
			} else {
				testIdx = append(testIdx, idx[p])
			}
		}
	}
	rand.Shuffle(len(trainIdx), func(i, j int) { trainIdx[i], trainIdx[j] = trainIdx[j], trainIdx[i] })
	rand.Shuffle(len(testIdx), func(i, j int) { testIdx[i], testIdx[j] = testIdx[j], testIdx[i] })

	for _, i := range trainIdx {
		Xtrain = append(Xtrain, X[i])
		ytrain = append(ytrain, y[i])
	}
	for _, i := range testIdx {
		Xtest = append(Xtest, X[i])
		ytest = append(ytest, y[i])
	}
	return
}

// bestK holds out the tail of the training set and sweeps odd k values,
// returning the k with the best validation accuracy.
func bestK(X [][]float64, y []string, kMax int) int {
	valSize := int(0.1 * float64(len(X)))
	if valSize < 100 {
		valSize = 100
	}
	if valSize >= len(X) {
		return 1
	}
	coreX, coreY := X[:len(X)-valSize], y[:len(y)-valSize]
	valX, valY := X[len(X)-valSize:], y[len(y)-valSize:]

	best, bestAcc := 1, -1.0
	for k := 1; k <= kMax; k += 2 {
		m := models.NewKNN[string](k)
		if err := m.Fit(coreX, coreY); err != nil {
			continue
		}
		preds, err := m.Predict(valX)
		if err != nil {
			continue
		}
		if a := accuracy(valY, preds); a > bestAcc {
			best, bestAcc = k, a
		}
	}
	return best
}

func accuracy(y, p []string) float64 {
	if len(y) == 0 {
		return 0
	}
	c := 0
	for i := range y {
		if y[i] == p[i] {
			c++
		}
	}
	return float64(c) / float64(len(y))
}

// macroPRF1 averages one-vs-rest precision, recall and F1 over the classes
// present in y.
func macroPRF1(y, p []string) (precision, recall, f1 float64) {
	classes := map[string]bool{}
	for _, label := range y {
		classes[label] = true
	}
	if len(classes) == 0 {
		return
	}
	for label := range classes {
		var tp, fp, fn int
		for i := range y {
			switch {
			case p[i] == label && y[i] == label:
				tp++
			case p[i] == label:
				fp++
			case y[i] == label:
				fn++
			}
		}
		var cPrec, cRec, cF1 float64
		if tp+fp > 0 {
			cPrec = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			cRec = float64(tp) / float64(tp+fn)
		}
		if cPrec+cRec > 0 {
			cF1 = 2 * cPrec * cRec / (cPrec + cRec)
		}
		precision += cPrec
		recall += cRec
		f1 += cF1
	}
	m := float64(len(classes))
	return precision / m, recall / m, f1 / m
}

func computeCurveSizes(totalTrain, points, min int, useLog bool) []int {
	if points <= 1 {
		points = 2
	}
	if min < 10 {
		min = 10
	}
	if min > totalTrain {
		min = int(math.Max(10, float64(totalTrain)/2))
	}
	sizes := make([]int, 0, points)
	if useLog {
		ratio := math.Pow(float64(totalTrain)/float64(min), 1.0/float64(points-1))
		for i := 0; i < points; i++ {
			s := int(math.Round(float64(min) * math.Pow(ratio, float64(i))))
			if s > totalTrain {
				s = totalTrain
			}
			sizes = append(sizes, s)
		}
	} else {
		step := float64(totalTrain-min) / float64(points-1)
		for i := 0; i < points; i++ {
			s := int(math.Round(float64(min) + float64(i)*step))
			if s > totalTrain {
				s = totalTrain
			}
			sizes = append(sizes, s)
		}
	}
	cleaned := make([]int, 0, len(sizes))
	last := -1
	for _, s := range sizes {
		if s <= last {
			s = last + 1
		}
		if s > totalTrain {
			s = totalTrain
		}
		if s != last {
			cleaned = append(cleaned, s)
			last = s
		}
	}
	if cleaned[len(cleaned)-1] != totalTrain {
		cleaned[len(cleaned)-1] = totalTrain
	}
	return cleaned
}

func writeCurveCSV(path string, sizes []int, trainAcc, testAcc []float64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"size", "train_acc", "test_acc"}); err != nil {
		return err
	}
	for i := range sizes {
		rec := []string{
			strconv.Itoa(sizes[i]),
			fmt.Sprintf("%.6f", trainAcc[i]),
			fmt.Sprintf("%.6f", testAcc[i]),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func plotCurvePNG(path string, sizes []int, trainAcc, testAcc []float64) error {
	p := plot.New()
	p.Title.Text = "Learning Curve"
	p.X.Label.Text = "Training samples"
	p.Y.Label.Text = "Accuracy"
	p.Y.Min = 0
	p.Y.Max = 1

	toXY := func(xs []int, ys []float64) plotter.XYs {
		pts := make(plotter.XYs, len(xs))
		for i := range xs {
			pts[i].X = float64(xs[i])
			pts[i].Y = ys[i]
		}
		return pts
	}
	if err := plotutil.AddLinePoints(p,
		"Train", toXY(sizes, trainAcc),
		"Test", toXY(sizes, testAcc),
	); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
