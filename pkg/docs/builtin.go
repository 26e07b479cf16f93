package docs

import "github.com/aretw0/sortvis/pkg/domain"

func builtin() map[domain.Algorithm]Entry {
	return map[domain.Algorithm]Entry{
		domain.AlgorithmBubble: {
			Algorithm:   domain.AlgorithmBubble,
			Name:        "Bubble Sort",
			Time:        Complexity{Best: "O(n)", Average: "O(n²)", Worst: "O(n²)"},
			Space:       "O(1)",
			Stable:      true,
			InPlace:     true,
			Description: "Repeatedly steps through the list, compares adjacent elements and swaps them if they are in the wrong order. After each pass the largest unsorted element has bubbled up to its final position.",
			Steps: []string{
				"Compare the first two adjacent elements.",
				"Swap them if the left one is greater.",
				"Move one position right and repeat until the end of the unsorted part.",
				"The last element of the pass is now in its final position.",
				"Repeat the passes over the shrinking unsorted part.",
			},
			UseCases: []string{
				"Teaching the idea of sorting by exchanges.",
				"Tiny arrays or arrays that are already almost sorted.",
			},
			AvoidCases: []string{
				"Any array with more than a few hundred elements.",
				"Performance sensitive code.",
			},
			Pros: []string{
				"Trivial to implement and reason about.",
				"Stable and in place.",
				"Can stop early on sorted input when a pass makes no swaps.",
			},
			Cons: []string{
				"Quadratic number of comparisons and swaps.",
				"Slower than insertion sort in practice.",
			},
		},
		domain.AlgorithmInsertion: {
			Algorithm:   domain.AlgorithmInsertion,
			Name:        "Insertion Sort",
			Time:        Complexity{Best: "O(n)", Average: "O(n²)", Worst: "O(n²)"},
			Space:       "O(1)",
			Stable:      true,
			InPlace:     true,
			Description: "Builds the sorted array one element at a time by taking the next element and shifting larger sorted elements right until the gap where it belongs opens up.",
			Steps: []string{
				"Treat the first element as a sorted prefix.",
				"Take the next element as the key.",
				"Shift every sorted element greater than the key one position right.",
				"Write the key into the gap.",
				"Repeat until the whole array is the sorted prefix.",
			},
			UseCases: []string{
				"Small arrays, often as the base case of hybrid sorts.",
				"Nearly sorted data.",
				"Online sorting where elements arrive one by one.",
			},
			AvoidCases: []string{
				"Large arrays in random or reverse order.",
			},
			Pros: []string{
				"Adaptive: linear time on sorted input.",
				"Stable, in place and with very low overhead.",
			},
			Cons: []string{
				"Quadratic number of shifts on average.",
			},
		},
		domain.AlgorithmSelection: {
			Algorithm:   domain.AlgorithmSelection,
			Name:        "Selection Sort",
			Time:        Complexity{Best: "O(n²)", Average: "O(n²)", Worst: "O(n²)"},
			Space:       "O(1)",
			Stable:      false,
			InPlace:     true,
			Description: "Divides the array into a sorted prefix and an unsorted suffix, repeatedly selecting the smallest element of the suffix and swapping it to the end of the prefix.",
			Steps: []string{
				"Scan the unsorted part for its minimum.",
				"Swap the minimum with the first unsorted element.",
				"Grow the sorted prefix by one.",
				"Repeat until one element remains.",
			},
			UseCases: []string{
				"Situations where writes are far more expensive than reads.",
				"Teaching.",
			},
			AvoidCases: []string{
				"Large arrays.",
				"When stability is required.",
			},
			Pros: []string{
				"At most n-1 swaps.",
				"Predictable running time.",
			},
			Cons: []string{
				"Always quadratic comparisons, even on sorted input.",
				"Not stable.",
			},
		},
		domain.AlgorithmMerge: {
			Algorithm:   domain.AlgorithmMerge,
			Name:        "Merge Sort",
			Time:        Complexity{Best: "O(n log n)", Average: "O(n log n)", Worst: "O(n log n)"},
			Space:       "O(n)",
			Stable:      true,
			InPlace:     false,
			Description: "Divide and conquer: split the array in halves, sort each half recursively and merge the two sorted halves into one.",
			Steps: []string{
				"Split the array into two halves.",
				"Recursively sort both halves.",
				"Merge the halves by repeatedly taking the smaller head element.",
				"Copy the merged run back into place.",
			},
			UseCases: []string{
				"Large data sets where worst case guarantees matter.",
				"Linked lists and external sorting.",
				"When a stable sort is required.",
			},
			AvoidCases: []string{
				"Memory constrained environments.",
				"Small arrays, where the overhead dominates.",
			},
			Pros: []string{
				"Guaranteed O(n log n).",
				"Stable.",
				"Parallelizes well.",
			},
			Cons: []string{
				"Needs O(n) auxiliary memory.",
				"Not adaptive to presorted input in its plain form.",
			},
		},
		domain.AlgorithmQuick: {
			Algorithm:   domain.AlgorithmQuick,
			Name:        "Quick Sort",
			Time:        Complexity{Best: "O(n log n)", Average: "O(n log n)", Worst: "O(n²)"},
			Space:       "O(log n)",
			Stable:      false,
			InPlace:     true,
			Description: "Divide and conquer: pick a pivot, partition the array so that smaller elements come before it and larger ones after it, then sort both sides recursively.",
			Steps: []string{
				"Pick a pivot, here uniformly at random, and move it to the end.",
				"Walk the range, swapping elements smaller than the pivot to the front.",
				"Swap the pivot into the boundary: it is now in its final position.",
				"Recursively sort the ranges left and right of the pivot.",
			},
			UseCases: []string{
				"General purpose in-memory sorting.",
				"Large arrays where average speed matters most.",
			},
			AvoidCases: []string{
				"When a worst case guarantee is required.",
				"When stability is required.",
			},
			Pros: []string{
				"Very fast in practice thanks to cache friendly partitioning.",
				"In place with logarithmic stack usage on average.",
			},
			Cons: []string{
				"Quadratic worst case with unlucky pivots.",
				"Not stable.",
			},
		},
	}
}
