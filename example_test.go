package filters

import "fmt"

func ExampleBloomFilter() {
	f, err := NewFromEstimates(1000, 0.01)
	if err != nil {
		fmt.Println(err)
		return
	}

	f.AddString("gopher")
	fmt.Println(f.HasString("gopher"))
	// Output:
	// true
}

func ExampleCountingBloomFilter_Remove() {
	f, err := NewCountingBloomFromEstimates(1000, 0.01)
	if err != nil {
		fmt.Println(err)
		return
	}

	f.AddString("temp")
	f.RemoveString("temp")
	fmt.Println(f.HasString("temp"))
	// Output:
	// false
}

func ExampleCuckooFilter() {
	f, err := NewCuckooFromEstimates(1000, 0.01)
	if err != nil {
		fmt.Println(err)
		return
	}

	f.Add([]byte("fp-entry"))
	fmt.Println(f.Has([]byte("fp-entry")))
	f.Remove([]byte("fp-entry"))
	fmt.Println(f.Has([]byte("fp-entry")))
	// Output:
	// true
	// false
}

func ExampleCountMinSketch() {
	s, err := NewCountMinSketch(0.01, 0.01)
	if err != nil {
		fmt.Println(err)
		return
	}

	s.UpdateString("click", 3)
	s.UpdateString("click", 4)
	fmt.Println(s.CountString("click") >= 7)
	// Output:
	// true
}

func ExampleIBLT_decode() {
	a, _ := NewIBLT(63, 4, 4)
	b, _ := NewIBLT(63, 4, 4)

	shared := []byte{1, 1, 1, 1}
	onlyA := []byte{2, 2, 2, 2}

	a.Add(shared)
	a.Add(onlyA)
	b.Add(shared)

	diff, err := a.Subtract(b)
	if err != nil {
		fmt.Println(err)
		return
	}

	result, err := diff.Decode()
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(result.Complete, len(result.Additional), len(result.Missing))
	// Output:
	// true 1 0
}
