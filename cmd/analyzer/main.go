package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"lazylearn/internal/data"
	"lazylearn/internal/features"
	"lazylearn/internal/models"
)

func main() {
	dataPath := flag.String("data", "data/synthetic.csv", "Dataset CSV path")
	kMax := flag.Int("k_max", 31, "Largest k to evaluate")
	step := flag.Int("step", 2, "Step between evaluated k values")
	standardize := flag.Bool("standardize", true, "Standardize features first")
	outImg := flag.String("out_img", "cmd/api/static/k_curve.png", "PNG output path")
	outCsv := flag.String("out_csv", "data/k_curve.csv", "CSV output path")
	flag.Parse()

	X, y, err := data.LoadCSV(*dataPath)
	if err != nil {
		fmt.Println("Failed to load dataset:", err)
		return
	}

	split := int(0.8 * float64(len(X)))
	Xtrain, ytrain := X[:split], y[:split]
	Xtest, ytest := X[split:], y[split:]

	if *standardize {
		scaler := features.NewStandardScaler()
		if Xtrain, err = scaler.FitTransform(Xtrain); err != nil {
			fmt.Println("Failed to fit scaler:", err)
			return
		}
		Xtest = scaler.Transform(Xtest)
	}

	var ks []int
	var trainAcc, testAcc []float64
	for k := 1; k <= *kMax; k += *step {
		mdl := models.NewKNN[string](k)
		if err := mdl.Fit(Xtrain, ytrain); err != nil {
			fmt.Println("Training failed:", err)
			return
		}
		pTrain, err := mdl.Predict(Xtrain)
		if err != nil {
			fmt.Println("Prediction failed:", err)
			return
		}
		pTest, err := mdl.Predict(Xtest)
		if err != nil {
			fmt.Println("Prediction failed:", err)
			return
		}
		ks = append(ks, k)
		trainAcc = append(trainAcc, accuracy(ytrain, pTrain))
		testAcc = append(testAcc, accuracy(ytest, pTest))
		fmt.Printf("%s | k=%d | train=%.3f | test=%.3f\n",
			mdl.Name(), k, trainAcc[len(trainAcc)-1], testAcc[len(testAcc)-1])
	}

	if err := writeCSV(*outCsv, ks, trainAcc, testAcc); err != nil {
		fmt.Println("Failed to write CSV:", err)
	} else {
		fmt.Println("Curve written to:", *outCsv)
	}
	if err := plotCurve(*outImg, ks, trainAcc, testAcc); err != nil {
		fmt.Println("Failed to write PNG:", err)
	} else {
		fmt.Println("Plot written to:", *outImg)
	}
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

func writeCSV(path string, ks []int, trainAcc, testAcc []float64) error {
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
	if err := w.Write([]string{"k", "train_acc", "test_acc"}); err != nil {
		return err
	}
	for i := range ks {
		rec := []string{
			strconv.Itoa(ks[i]),
			fmt.Sprintf("%.6f", trainAcc[i]),
			fmt.Sprintf("%.6f", testAcc[i]),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func plotCurve(path string, ks []int, trainAcc, testAcc []float64) error {
	p := plot.New()
	p.Title.Text = "Accuracy vs k"
	p.X.Label.Text = "k (neighbour count)"
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
		"Train", toXY(ks, trainAcc),
		"Test", toXY(ks, testAcc),
	); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
